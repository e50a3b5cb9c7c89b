package firebase

import (
	"context"
	"fmt"

	"snapgram_api/config"
	"snapgram_api/tools"
	"snapgram_api/types"

	cloudtasks "cloud.google.com/go/cloudtasks/apiv2"
	"cloud.google.com/go/logging"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// NewLogger returns the Cloud Logging logger of the service, or a zap logger
// writing to stdout when cfg.LogStdout is set. The returned func flushes it.
func NewLogger(ctx context.Context, cfg config.Config) (tools.Logger, func() error, error) {
	if cfg.LogStdout {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing zap logger: %w", err)
		}
		return tools.NewZapLogger(zl), func() error {
			_ = zl.Sync()
			return nil
		}, nil
	}

	client, err := logging.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logging client: %w", err)
	}

	logger := client.Logger(cfg.LogName)
	logger.Log(logging.Entry{
		Severity: logging.Info,
		Payload:  "Logging client initialized successfully",
		Labels:   map[string]string{"status": "success"},
	})

	return logger, client.Close, nil
}

func InitFirebaseApp(ctx context.Context, cfg config.Config, logger tools.Logger) (*types.FirebaseApp, error) {
	step := func(name string, err error) error {
		if err != nil {
			logger.Log(logging.Entry{
				Severity: logging.Error,
				Payload:  "Error initializing " + name,
				Labels:   map[string]string{"error": err.Error()},
			})
			return fmt.Errorf("error initializing %s: %w", name, err)
		}

		logger.Log(logging.Entry{
			Severity: logging.Info,
			Payload:  name + " initialized successfully",
			Labels:   map[string]string{"status": "success"},
		})
		return nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	})
	if err := step("Firebase app", err); err != nil {
		return nil, err
	}

	db, err := app.Firestore(ctx)
	if err := step("Firestore client", err); err != nil {
		return nil, err
	}

	gcs, err := storage.NewClient(ctx)
	if err := step("Storage client", err); err != nil {
		return nil, err
	}

	auth, err := app.Auth(ctx)
	if err := step("Auth client", err); err != nil {
		return nil, err
	}

	// Password sign-in is only exposed by the Identity Toolkit REST API.
	identity, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err := step("Identity Toolkit client", err); err != nil {
		return nil, err
	}

	messagingClient, err := app.Messaging(ctx)
	if err := step("Messaging client", err); err != nil {
		return nil, err
	}

	taskClient, err := cloudtasks.NewClient(ctx)
	if err := step("Cloud Tasks client", err); err != nil {
		return nil, err
	}

	return &types.FirebaseApp{
		Admin:         app,
		DB:            db,
		Storage:       gcs,
		Auth:          auth,
		Identity:      identity,
		MessageClient: messagingClient,
		TaskClient:    taskClient,
	}, nil
}
