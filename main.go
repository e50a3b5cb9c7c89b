package main

import (
	"context"
	"log"

	"snapgram_api/api"
	"snapgram_api/config"
	"snapgram_api/firebase"
	"snapgram_api/handlers"
	"snapgram_api/middlewares"
	"snapgram_api/notifications"
	"snapgram_api/tasks"
	"snapgram_api/tools"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	logger, flush, err := firebase.NewLogger(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer flush()

	// Initialize Firebase app
	firebaseApp, err := firebase.InitFirebaseApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v\n", err)
	}
	defer firebaseApp.Close()

	documents := firebase.NewDocuments(firebaseApp.DB)
	storage := firebase.NewStorage(firebaseApp.Storage, cfg.StorageBucket, cfg.PublicURL)

	svc := api.New(api.Backend{
		Accounts:  firebase.NewAccounts(firebaseApp.Auth, firebaseApp.Identity, documents, cfg.SessionTTL),
		Documents: documents,
		Storage:   storage,
		Avatars:   tools.AvatarURLs{BaseURL: cfg.PublicURL},
		Cleanup: tasks.NewCleanupQueue(
			firebaseApp.TaskClient,
			cfg.CleanupQueuePath(),
			cfg.CleanupHandlerURL(),
			cfg.TasksServiceAccount,
			logger,
		),
	}, logger)

	tokenValidator, err := idtoken.NewValidator(ctx)
	if err != nil {
		log.Fatalf("Failed to create task token validator: %v\n", err)
	}

	r := gin.Default()

	// Disable TrustedProxies feature
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Fatalf("Failed to set trusted proxies: %v\n", err)
	}

	handlers.RegisterRoutes(r, handlers.Dependencies{
		Logger:   logger,
		Service:  svc,
		Files:    storage,
		Notifier: notifications.NewNotifier(firebaseApp.MessageClient, documents, logger),
		Cookies:  handlers.Cookies{Secure: cfg.CookieSecure, Domain: cfg.CookieDomain},
		Tasks: middlewares.CloudTasksAuth{
			Validator:      tokenValidator,
			Audience:       cfg.CleanupHandlerURL(),
			ServiceAccount: cfg.TasksServiceAccount,
			Queue:          cfg.TasksCleanupQueue,
		},
	})

	if err := r.Run("0.0.0.0:" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v\n", err)
	}
}
