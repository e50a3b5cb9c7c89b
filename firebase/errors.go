package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"snapgram_api/types"

	"cloud.google.com/go/storage"
	"firebase.google.com/go/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify tags a Firebase or Google Cloud error with the matching error kind.
// Errors it does not recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if kind := kindOf(err); kind != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		return types.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return types.ErrUnavailable
	case auth.IsUserNotFound(err):
		return types.ErrNotFound
	case auth.IsEmailAlreadyExists(err), auth.IsUIDAlreadyExists(err):
		return types.ErrConflict
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return kindOfHTTP(apiErr.Code)
	}

	if s, ok := status.FromError(err); ok {
		return kindOfCode(s.Code())
	}

	return nil
}

func kindOfCode(code codes.Code) error {
	switch code {
	case codes.NotFound:
		return types.ErrNotFound
	case codes.AlreadyExists:
		return types.ErrConflict
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return types.ErrInvalidInput
	case codes.PermissionDenied, codes.Unauthenticated:
		return types.ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return types.ErrUnavailable
	default:
		return nil
	}
}

func kindOfHTTP(code int) error {
	switch {
	case code == http.StatusNotFound:
		return types.ErrNotFound
	case code == http.StatusConflict, code == http.StatusPreconditionFailed:
		return types.ErrConflict
	case code == http.StatusBadRequest:
		return types.ErrInvalidInput
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return types.ErrUnauthorized
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return types.ErrUnavailable
	default:
		return nil
	}
}
