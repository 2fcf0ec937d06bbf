package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// ErrTransport wraps email/WhatsApp delivery failures so controllers
	// can map them to 5xx instead of generic internal errors.
	ErrTransport = errors.New("transport failure")
)

// ValidationError is a user-correctable input error. The message is safe
// to surface verbatim in API responses.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
