package types

import "errors"

// Error kinds shared by the remote adapters and the data-access layer.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrUnavailable  = errors.New("service unavailable")
	ErrMalformed    = errors.New("malformed document")
)

// Kinds lists every error kind, most specific first.
var Kinds = []error{
	ErrNotFound,
	ErrInvalidInput,
	ErrUnauthorized,
	ErrForbidden,
	ErrConflict,
	ErrUnavailable,
	ErrMalformed,
}
