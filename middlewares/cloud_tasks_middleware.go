package middlewares

import (
	"context"
	"fmt"
	"strings"

	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
)

// TokenValidator checks Google-signed ID tokens. *idtoken.Validator satisfies it.
type TokenValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// CloudTasksAuth names the only caller allowed on task routes.
type CloudTasksAuth struct {
	Validator      TokenValidator
	Audience       string
	ServiceAccount string
	Queue          string
}

// CloudTasksMiddleware admits requests delivered by Cloud Tasks from the
// configured queue with an OIDC token of the configured service account.
func CloudTasksMiddleware(logger tools.Logger, auth CloudTasksAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.Validator == nil || auth.ServiceAccount == "" {
			tools.LogError(logger, c, fmt.Errorf("%w: task authentication is not configured", types.ErrForbidden))
			return
		}

		if queue := c.GetHeader("X-CloudTasks-QueueName"); queue != auth.Queue {
			tools.LogError(logger, c, fmt.Errorf("%w: unexpected task queue %q", types.ErrForbidden, queue))
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			tools.LogError(logger, c, fmt.Errorf("%w: missing task token", types.ErrUnauthorized))
			return
		}

		payload, err := auth.Validator.Validate(c.Request.Context(), token, auth.Audience)
		if err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: invalid task token: %v", types.ErrUnauthorized, err))
			return
		}

		email, _ := payload.Claims["email"].(string)
		verified, _ := payload.Claims["email_verified"].(bool)
		if email != auth.ServiceAccount || !verified {
			tools.LogError(logger, c, fmt.Errorf("%w: task token issued for %q", types.ErrForbidden, email))
			return
		}

		c.Next()
	}
}
