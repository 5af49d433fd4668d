package membership

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindMissingField  ErrorKind = "missing_field"
	KindChronology    ErrorKind = "chronology"
	KindPayment       ErrorKind = "payment_policy"
	KindFreeze        ErrorKind = "freeze_policy"
	KindUnresolvedRef ErrorKind = "unresolved_reference"
)

// ValidationError carries the single human-readable message shown for a
// rejected submit.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(kind ErrorKind, format string, args ...interface{}) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsValidation reports whether err is (or wraps) a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
