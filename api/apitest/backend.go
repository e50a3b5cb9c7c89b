package apitest

import (
	"snapgram_api/api"
	"snapgram_api/tools"

	"go.uber.org/zap"
)

const (
	FilesBaseURL   = "http://files.test"
	AvatarsBaseURL = "http://avatars.test"
)

// Backend is an in-memory stand-in for Firebase Auth, Firestore, Storage and
// the cleanup queue. All components share one Recorder.
type Backend struct {
	*Recorder

	Accounts  *Accounts
	Documents *Documents
	Storage   *Storage
	Cleanup   *Cleanup
}

func NewBackend() *Backend {
	rec := &Recorder{}
	clk := newClock()

	return &Backend{
		Recorder:  rec,
		Accounts:  newAccounts(rec, clk),
		Documents: newDocuments(rec, clk),
		Storage:   newStorage(rec),
		Cleanup:   &Cleanup{rec: rec},
	}
}

// API returns the backend wired for api.New.
func (b *Backend) API() api.Backend {
	return api.Backend{
		Accounts:  b.Accounts,
		Documents: b.Documents,
		Storage:   b.Storage,
		Avatars:   tools.AvatarURLs{BaseURL: AvatarsBaseURL},
		Cleanup:   b.Cleanup,
	}
}

// Service returns an api.Service over the backend that logs nowhere.
func (b *Backend) Service() *api.Service {
	return api.New(b.API(), tools.NewZapLogger(zap.NewNop()))
}
