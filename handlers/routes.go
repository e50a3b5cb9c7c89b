package handlers

import (
	"snapgram_api/api"
	"snapgram_api/middlewares"
	"snapgram_api/tasks"
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/gin-gonic/gin"
)

type Dependencies struct {
	Logger   tools.Logger
	Service  *api.Service
	Files    FileOpener
	Notifier LikeNotifier
	Cookies  Cookies
	Tasks    middlewares.CloudTasksAuth
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {
	logger, svc := d.Logger, d.Service
	auth := middlewares.AuthMiddleware(logger, svc)

	// Define the routes for the tasks handler
	r.POST(types.CLOUD_TASKS_CLEANUP_PATH, middlewares.CloudTasksMiddleware(logger, d.Tasks), tasks.FileCleanupTaskHandler(logger, svc))

	accountGroup := r.Group("/api/account")
	accountGroup.POST("", SignUpHandler(logger, svc))
	accountGroup.POST("/sessions", SignInHandler(logger, svc, d.Cookies))
	accountGroup.GET("/sessions/current", middlewares.OptionalSessionMiddleware(logger), CheckSessionHandler(logger, svc))
	accountGroup.Use(auth)
	accountGroup.GET("", CurrentUserHandler(logger))
	accountGroup.DELETE("/sessions/current", SignOutHandler(logger, svc, d.Cookies))
	accountGroup.DELETE("/sessions", DeleteSessionsHandler(logger, svc, d.Cookies))

	postsGroup := r.Group("/api/posts")
	postsGroup.Use(auth)
	postsGroup.GET("", GetInfinitePostsHandler(logger, svc))
	postsGroup.GET("/recent", GetRecentPostsHandler(logger, svc))
	postsGroup.GET("/search", SearchPostsHandler(logger, svc))
	postsGroup.GET("/liked", GetLikedPostsHandler(logger, svc))
	postsGroup.GET("/:id", GetPostHandler(logger, svc))
	postsGroup.POST("", middlewares.ImageValidationMiddleware(logger, true), CreatePostHandler(logger, svc))
	postsGroup.PUT("/:id", middlewares.ImageValidationMiddleware(logger, false), UpdatePostHandler(logger, svc))
	postsGroup.DELETE("/:id", DeletePostHandler(logger, svc))
	postsGroup.PUT("/:id/likes", LikePostHandler(logger, svc, d.Notifier))

	savesGroup := r.Group("/api/saves")
	savesGroup.Use(auth)
	savesGroup.POST("", SavePostHandler(logger, svc))
	savesGroup.GET("", GetSavedPostsHandler(logger, svc))
	savesGroup.DELETE("/:id", DeleteSaveHandler(logger, svc))

	usersGroup := r.Group("/api/users")
	usersGroup.Use(auth)
	usersGroup.GET("", GetUsersHandler(logger, svc))
	usersGroup.GET("/:id", GetUserHandler(logger, svc))
	usersGroup.GET("/:id/posts", GetUserPostsHandler(logger, svc))
	usersGroup.PUT("/:id", middlewares.SelfMiddleware(logger, "id"), middlewares.ImageValidationMiddleware(logger, false), UpdateUserHandler(logger, svc))

	messagingGroup := r.Group("/api/messaging")
	messagingGroup.Use(auth)
	messagingGroup.POST("", SetMessagingRegistrationToken(logger, svc))

	r.GET("/api/files/:id/preview", FilePreviewHandler(logger, d.Files))
	r.GET("/api/avatars/initials", InitialsAvatarHandler(logger))
}
