package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired indicates the push token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the push token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrServiceUnavailable indicates the content API could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrLocked indicates another process holds the lock for this work
	ErrLocked = errors.New("locked")
)

// StatusError is returned when the content API answers with a non-2xx status
type StatusError struct {
	Code int
	// Body is the (possibly empty) response text
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Code)
}

// StatusCode extracts the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
