package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed struct tag.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error   string       `json:"error" example:"validation failed"`
	Details []FieldError `json:"details"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return membership.ValidPhone(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct checks the `validate` tags of s and returns one entry per
// failed field. A nil result means s is valid.
func ValidateStruct(s interface{}) []FieldError {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "phone":
		return fe.Field() + " must look like +996XXXXXXXXX or +7XXXXXXXXXX"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

func RespondWithValidationErrors(c *gin.Context, errs []FieldError) {
	metrics.RecordValidationFailure("request")
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: "validation failed", Details: errs})
}
