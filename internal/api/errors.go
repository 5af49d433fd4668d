package api

import (
	"net/http"

	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RespondValidation writes a 400 carrying the error kind when err is a
// validation error, and reports whether it did.
func RespondValidation(c *gin.Context, err error) bool {
	ve, ok := membership.AsValidation(err)
	if !ok {
		return false
	}
	metrics.RecordValidationFailure(string(ve.Kind))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Kind: string(ve.Kind)})
	return true
}
