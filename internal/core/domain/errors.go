package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// A ValidationError carries a message that is safe to show to the caller.
//
// It matches [ErrValidation] with [errors.Is].
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) error {
	return ValidationError{Msg: msg}
}

func (e ValidationError) Error() string {
	return e.Msg
}

func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}
