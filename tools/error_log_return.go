package tools

import (
	"errors"
	"net/http"

	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an error kind to the HTTP status returned to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func LogError(logger Logger, c *gin.Context, err error) {
	status := StatusFor(err)

	severity := logging.Error
	if status < http.StatusInternalServerError {
		severity = logging.Warning
	}

	logger.Log(logging.Entry{
		Severity: severity,
		Payload:  err.Error(),
		Labels:   map[string]string{"status": "error", "path": c.FullPath()},
	})

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Unexpected error occurred"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
	})
}
