package service

import "errors"

var (
	ErrValidation            = errors.New("validation failed")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrMissingToken          = errors.New("access token required")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrForbidden             = errors.New("insufficient role")
)

// ValidationError carries a client-facing reason and matches ErrValidation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
