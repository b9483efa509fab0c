// Package service provides business logic services for userhub.
package service

import "errors"

// Common service errors.
var (
	// ErrInvalidEmail indicates the email does not parse as an address.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword indicates the password is empty.
	ErrInvalidPassword = errors.New("invalid password: must not be empty")

	// ErrInternalError indicates an unexpected storage or hashing failure.
	ErrInternalError = errors.New("internal server error")
)
