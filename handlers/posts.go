package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"snapgram_api/api"
	"snapgram_api/middlewares"
	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/logging"
	"github.com/gin-gonic/gin"
)

// LikeNotifier tells a post creator about a new like.
type LikeNotifier interface {
	NotifyLike(ctx context.Context, post *types.Post, liker *types.User) error
}

func GetInfinitePostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.GetInfinitePosts(c.Request.Context(), c.Query("cursor"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

func GetRecentPostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.GetRecentPosts(c.Request.Context())
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

func SearchPostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.SearchPosts(c.Request.Context(), c.Query("q"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

func GetLikedPostsHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		posts, err := svc.GetLikedPosts(c.Request.Context(), user.Id)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

func GetPostHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetPostByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, post)
	}
}

// CreatePostHandler reads caption, location and tags from the multipart form
// next to the file checked by ImageValidationMiddleware.
func CreatePostHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		post, err := svc.CreatePost(c.Request.Context(), api.NewPost{
			CreatorID: user.Id,
			Caption:   c.PostForm(types.FIREBASE_POSTS_FIELDS_CAPTION),
			Location:  c.PostForm(types.FIREBASE_POSTS_FIELDS_LOCATION),
			Tags:      c.PostForm(types.FIREBASE_POSTS_FIELDS_TAGS),
			File:      middlewares.UploadedFile(c),
		})
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusCreated, post)
	}
}

func UpdatePostHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, ok := ownPost(logger, svc, c)
		if !ok {
			return
		}

		updated, err := svc.UpdatePost(c.Request.Context(), api.UpdatePost{
			PostID:   post.Id,
			ImageID:  post.ImageId,
			ImageURL: post.ImageUrl,
			Caption:  c.PostForm(types.FIREBASE_POSTS_FIELDS_CAPTION),
			Location: c.PostForm(types.FIREBASE_POSTS_FIELDS_LOCATION),
			Tags:     c.PostForm(types.FIREBASE_POSTS_FIELDS_TAGS),
			File:     middlewares.UploadedFile(c),
		})
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

func DeletePostHandler(logger tools.Logger, svc *api.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, ok := ownPost(logger, svc, c)
		if !ok {
			return
		}

		if err := svc.DeletePost(c.Request.Context(), post.Id, post.ImageId); err != nil {
			tools.LogError(logger, c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

type likesRequest struct {
	Likes []string `json:"likes"`
}

// LikePostHandler overwrites the liker list. The caller may only add or remove
// their own id; other likers are taken from the stored post so that a stale
// list cannot drop them. When the caller was added the creator is notified; a
// failed notification does not fail the request.
func LikePostHandler(logger tools.Logger, svc *api.Service, notifier LikeNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(logger, c)
		if !ok {
			return
		}

		var req likesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tools.LogError(logger, c, fmt.Errorf("%w: %w", types.ErrInvalidInput, err))
			return
		}

		ctx := c.Request.Context()

		before, err := svc.GetPostByID(ctx, c.Param("id"))
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		likes, err := mergeLikes(before.Likes, req.Likes, user.Id)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		post, err := svc.LikePost(ctx, before.Id, likes)
		if err != nil {
			tools.LogError(logger, c, err)
			return
		}

		liked := slices.Contains(post.Likes, user.Id) && !slices.Contains(before.Likes, user.Id)
		if liked && notifier != nil {
			if err := notifier.NotifyLike(ctx, post, user); err != nil {
				logger.Log(logging.Entry{
					Severity: logging.Warning,
					Payload:  "Error sending like notification",
					Labels:   map[string]string{"postId": post.Id, "error": err.Error()},
				})
			}
		}

		c.JSON(http.StatusOK, post)
	}
}

// mergeLikes applies userID's membership in requested to stored. Requested
// ids of other users must already be in stored.
func mergeLikes(stored, requested []string, userID string) ([]string, error) {
	for _, id := range requested {
		if id != userID && !slices.Contains(stored, id) {
			return nil, fmt.Errorf("%w: cannot like on behalf of %s", types.ErrForbidden, id)
		}
	}

	likes := make([]string, 0, len(stored)+1)
	for _, id := range stored {
		if id != userID {
			likes = append(likes, id)
		}
	}
	if slices.Contains(requested, userID) {
		likes = append(likes, userID)
	}

	return likes, nil
}

// ownPost loads the post of the :id route parameter and checks the caller
// created it.
func ownPost(logger tools.Logger, svc *api.Service, c *gin.Context) (*types.Post, bool) {
	user, ok := currentUser(logger, c)
	if !ok {
		return nil, false
	}

	post, err := svc.GetPostByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		tools.LogError(logger, c, err)
		return nil, false
	}

	if post.Creator != user.Id {
		tools.LogError(logger, c, fmt.Errorf("%w: only the creator can change a post", types.ErrForbidden))
		return nil, false
	}

	return post, true
}
