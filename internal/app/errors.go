package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmailExists       = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrNotFound          = errors.New("resource not found")
	ErrAccessDenied      = errors.New("access denied")
)
