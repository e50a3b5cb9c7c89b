// Package session carries the caller's session through a context.
package session

import (
	"context"

	"snapgram_api/types"
)

type contextKey struct{}

// NewContext returns a copy of ctx bound to s.
func NewContext(ctx context.Context, s *types.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session bound to ctx, or nil.
func FromContext(ctx context.Context) *types.Session {
	s, _ := ctx.Value(contextKey{}).(*types.Session)
	return s
}

// Resolve maps the "current" alias to the id of the session bound to ctx.
func Resolve(ctx context.Context, id string) (string, bool) {
	if id != types.CURRENT_SESSION {
		return id, true
	}

	s := FromContext(ctx)
	if s == nil {
		return "", false
	}

	return s.Id, true
}
