// Package common defines the error taxonomy shared by the database client,
// the auth workflows and the HTTP layer. Callers wrap these values with
// fmt.Errorf("%w: ...") and match them with errors.Is.
package common

import "errors"

var (
	// Request-level errors.
	ErrorValidation = errors.New("validation error")

	// Lookup errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Access errors. Unauthorized means the caller could not be identified,
	// Forbidden means it was identified but the credentials do not match.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Anything the caller cannot fix: transport, encoding, hashing, token signing.
	ErrorInternal = errors.New("internal error")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
