package api

import (
	"errors"
	"fmt"

	"snapgram_api/types"
)

// Error is returned by every Service method. Kind is one of the types.Err*
// kinds, or nil when the remote failure could not be categorized.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the kind err carries, or nil.
func KindOf(err error) error {
	for _, kind := range types.Kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsTransient reports whether retrying the operation may succeed.
func IsTransient(err error) bool {
	return errors.Is(err, types.ErrUnavailable)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Op == op {
		return err
	}

	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

func invalid(op, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: types.ErrInvalidInput, Err: fmt.Errorf(format, args...)}
}

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return types.ErrInvalidInput
}

// ValidationErrors returns every field error contained in err.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError

	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *ValidationError:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)

	return out
}
