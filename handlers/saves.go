package handlers

import (
	"fmt"
	"net/http"

	"snapgram_api/api"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

type saveRequest struct {
	PostId string `json:"postId" binding:"required"`
}

func SavePostHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		var req saveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: %w", types.ErrInvalidInput, err))
			return
		}

		save, err := svc.SavePost(c.Request.Context(), user.Id, req.PostId)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusCreated, save)
	}
}

func GetSavedPostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		posts, err := svc.GetSavedPosts(c.Request.Context(), user.Id)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

func DeleteSaveHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		ctx := c.Request.Context()

		save, err := svc.GetSaveByID(ctx, c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		if save.User != user.Id {
			tools.LogError(logger, c, fmt.Errorf("%w: save belongs to another user", types.ErrForbidden))
			return
		}

		if err := svc.DeleteSavedPost(ctx, save.Id); err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
