package middlewares

import (
	"context"
	"fmt"
	"strings"

	"snapgram_api/session"
	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

const userKey = "user"

// UserResolver resolves the profile behind the session bound to a context.
type UserResolver interface {
	GetCurrentUser(ctx context.Context) (*types.User, error)
}

// AuthMiddleware binds the caller's session to the request context and stores
// the resolved user. Requests without a valid session are rejected.
func AuthMiddleware(logger tools.Logger, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := sessionFromRequest(c)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		ctx := session.NewContext(c.Request.Context(), s)
		user, err := users.GetCurrentUser(ctx)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(userKey, user)
		c.Next()
	}
}

// OptionalSessionMiddleware binds a session when the request carries a well
// formed token and lets every request through.
func OptionalSessionMiddleware(logger tools.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, err := sessionFromRequest(c); err == nil {
			c.Request = c.Request.WithContext(session.NewContext(c.Request.Context(), s))
		} else if extractToken(c) != "" {
			logger.Log(logging.Entry{
				Severity: logging.Warning,
				Payload:  "Ignoring malformed session token",
				Labels:   map[string]string{"path": c.FullPath()},
			})
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*types.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*types.User)
	return user, ok
}

func sessionFromRequest(c *gin.Context) (*types.Session, error) {
	token := extractToken(c)
	if token == "" {
		return nil, fmt.Errorf("%w: no session token provided", types.ErrUnauthorized)
	}

	s, err := types.ParseSessionToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	return s, nil
}

// Extracts token from the Authorization header or cookie.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := c.Cookie(types.SESSION_COOKIE_NAME); err == nil {
		return cookie
	}
	return ""
}
