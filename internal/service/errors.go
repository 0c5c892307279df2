package service

import "errors"

// Errors returned by the services.  The HTTP layer maps each one to a
// status code and a fixed client message.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVulnerablePassword = errors.New("vulnerable password")
	ErrNotFound           = errors.New("report not found")
	ErrInvalidFile        = errors.New("invalid file")
)
