package handlers

import (
	"fmt"
	"net/http"

	"snapgram_api/api"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

type registrationTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SetMessagingRegistrationToken stores the push token of the current user's device.
func SetMessagingRegistrationToken(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		var req registrationTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: %w", types.ErrInvalidInput, err))
			return
		}

		if err := svc.SetMessagingToken(c.Request.Context(), user.Id, req.Token); err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
}
