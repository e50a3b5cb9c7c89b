// Package api is the data-access layer: one method per use case, each an
// independent unit of work against the remote backend.
package api

import (
	"snapgram_api/tools"
	"snapgram_api/types"

	"github.com/go-playground/validator/v10"
)

// Backend groups the remote collaborators of a Service. Cleanup is optional.
type Backend struct {
	Accounts  Accounts
	Documents Documents
	Storage   Storage
	Avatars   Avatars
	Cleanup   CleanupQueue
}

type Service struct {
	accounts  Accounts
	documents Documents
	storage   Storage
	avatars   Avatars
	cleanup   CleanupQueue

	logger   tools.Logger
	validate *validator.Validate
	previews types.PreviewOptions
}

func New(backend Backend, logger tools.Logger) *Service {
	return &Service{
		accounts:  backend.Accounts,
		documents: backend.Documents,
		storage:   backend.Storage,
		avatars:   backend.Avatars,
		cleanup:   backend.Cleanup,
		logger:    logger,
		validate:  newValidator(),
		previews:  tools.DefaultPreviewOptions(),
	}
}
