package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"snapgram_api/api"
	"snapgram_api/middlewares"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

func GetUsersHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				tools.LogError(logger, c, fmt.Errorf("%w: limit must be a number", types.ErrInvalidInput))
				return
			}
			limit = n
		}

		users, err := svc.GetUsers(c.Request.Context(), limit)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

func GetUserHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.GetUserByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func GetUserPostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.GetUserPosts(c.Request.Context(), c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

// UpdateUserHandler runs behind SelfMiddleware, so the current user is the
// profile being changed.
func UpdateUserHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		updated, err := svc.UpdateUser(c.Request.Context(), api.UpdateUser{
			UserID:   user.Id,
			Name:     c.PostForm(types.FIREBASE_USERS_FIELDS_NAME),
			Bio:      c.PostForm(types.FIREBASE_USERS_FIELDS_BIO),
			ImageID:  user.ImageId,
			ImageURL: user.ImageUrl,
			File:     middlewares.UploadedFile(c),
		})
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}
