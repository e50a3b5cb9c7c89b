package middlewares

import (
	"fmt"
	"net/http"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// SelfMiddleware only lets the authenticated user act on the resource whose
// user id is in the param route parameter. It runs after AuthMiddleware.
func SelfMiddleware(logger tools.Logger, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			logger.Log(logging.Entry{
				Severity: logging.Error,
				Payload:  "No authenticated user in context",
				Labels:   map[string]string{"path": c.FullPath()},
			})
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error occurred"})
			return
		}

		if user.Id != c.Param(param) {
			tools.LogError(logger, c, fmt.Errorf("%w: you can only change your own profile", types.ErrForbidden))
			return
		}

		c.Next()
	}
}
