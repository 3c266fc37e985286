package model

import "errors"

// Error taxonomy shared by the engine, the identity directory and the stores.
// Callers wrap these with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrAuth              = errors.New("invalid credentials")
)
