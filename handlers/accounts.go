package handlers

import (
	"fmt"
	"net/http"
	"time"

	"snapgram_api/api"
	"snapgram_api/middlewares"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

// Cookies configures the session cookie set on sign-in.
type Cookies struct {
	Secure bool
	Domain string
}

func (k Cookies) set(c *gin.Context, s *types.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(types.SESSION_COOKIE_NAME, s.Token(), maxAge, "/", k.Domain, k.Secure, true)
}

func (k Cookies) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(types.SESSION_COOKIE_NAME, "", -1, "/", k.Domain, k.Secure, true)
}

func SignUpHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in api.NewUser
		if err := c.ShouldBindJSON(&in); err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: %w", types.ErrInvalidInput, err))
			return
		}

		user, err := svc.CreateUserAccount(c.Request.Context(), in)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

// SignInHandler creates a session, sets it as cookie and also returns the
// token for clients that send it as a bearer token.
func SignInHandler(logger tools.Logger, svc *api.Service, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in api.SignIn
		if err := c.ShouldBindJSON(&in); err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: %w", types.ErrInvalidInput, err))
			return
		}

		s, err := svc.SignInAccount(c.Request.Context(), in)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		cookies.set(c, s)
		c.JSON(http.StatusCreated, gin.H{"session": s, "token": s.Token()})
	}
}

func CurrentUserHandler(logger tools.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func CheckSessionHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, err := svc.CheckActiveSession(c.Request.Context())
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"active": active})
	}
}

func SignOutHandler(logger tools.Logger, svc *api.Service, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.SignOutAccount(c.Request.Context()); err != nil {
			tools.LogError(logger, c, err)
			return
		}

		cookies.clear(c)
		c.Status(http.StatusNoContent)
	}
}

func DeleteSessionsHandler(logger tools.Logger, svc *api.Service, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteSessions(c.Request.Context()); err != nil {
			tools.LogError(logger, c, err)
			return
		}

		cookies.clear(c)
		c.Status(http.StatusNoContent)
	}
}

func currentUser(logger tools.Logger, c *gin.Context) (*types.User, bool) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		tools.LogError(logger, c, fmt.Errorf("%w: not signed in", types.ErrUnauthorized))
	}
	return user, ok
}
