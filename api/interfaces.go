package api

import (
	"context"

	"snapgram_api/types"
)

// Accounts manages auth accounts and their sessions. Methods that act on the
// caller read the session bound to ctx (see package session).
type Accounts interface {
	Create(ctx context.Context, id, email, password, name string) (*types.Account, error)
	Delete(ctx context.Context, id string) error
	// Get returns the account of the session bound to ctx.
	Get(ctx context.Context) (*types.Account, error)

	CreateEmailPasswordSession(ctx context.Context, email, password string) (*types.Session, error)
	// GetSession accepts types.CURRENT_SESSION for the session bound to ctx.
	GetSession(ctx context.Context, id string) (*types.Session, error)
	ListSessions(ctx context.Context) ([]types.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Documents is a schema-flexible document store organised in collections.
type Documents interface {
	Create(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error)
	Get(ctx context.Context, collection, id string) (*types.Document, error)
	List(ctx context.Context, collection string, q types.Query) ([]types.Document, error)
	// Update merges data into an existing document and fails with
	// types.ErrNotFound when there is none.
	Update(ctx context.Context, collection, id string, data map[string]interface{}) (*types.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// Storage holds uploaded files.
type Storage interface {
	CreateFile(ctx context.Context, id string, file types.File) (*types.StoredFile, error)
	// GetFilePreview returns a URL rendering the file with opts.
	GetFilePreview(ctx context.Context, id string, opts types.PreviewOptions) (string, error)
	DeleteFile(ctx context.Context, id string) error
}

type Avatars interface {
	GetInitials(name string) string
}

// CleanupQueue retries the deletion of files a request failed to remove.
type CleanupQueue interface {
	EnqueueFileCleanup(ctx context.Context, fileID, reason string) error
}
