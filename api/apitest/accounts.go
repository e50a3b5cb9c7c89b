package apitest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"snapgram_api/session"
	"snapgram_api/tools"
	"snapgram_api/types"
)

const sessionTTL = 14 * 24 * time.Hour

type account struct {
	types.Account
	password string
}

// Accounts is an in-memory auth service. Sessions are only honoured when the
// context carries both the id and the secret handed out at sign-in.
type Accounts struct {
	rec   *Recorder
	clock *clock

	mu       sync.Mutex
	accounts map[string]*account
	sessions map[string]*types.Session
}

func newAccounts(rec *Recorder, clk *clock) *Accounts {
	return &Accounts{
		rec:      rec,
		clock:    clk,
		accounts: map[string]*account{},
		sessions: map[string]*types.Session{},
	}
}

func (a *Accounts) Create(ctx context.Context, id, email, password, name string) (*types.Account, error) {
	if err := a.rec.record("Accounts.Create", "", id); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.accounts[id]; ok {
		return nil, fmt.Errorf("%w: account %s", types.ErrConflict, id)
	}
	for _, acc := range a.accounts {
		if acc.Email == email {
			return nil, fmt.Errorf("%w: email %s already in use", types.ErrConflict, email)
		}
	}

	acc := &account{Account: types.Account{Id: id, Name: name, Email: email}, password: password}
	a.accounts[id] = acc

	out := acc.Account
	return &out, nil
}

func (a *Accounts) Delete(ctx context.Context, id string) error {
	if err := a.rec.record("Accounts.Delete", "", id); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.accounts[id]; !ok {
		return fmt.Errorf("%w: account %s", types.ErrNotFound, id)
	}
	delete(a.accounts, id)

	for sid, s := range a.sessions {
		if s.AccountId == id {
			delete(a.sessions, sid)
		}
	}

	return nil
}

func (a *Accounts) Get(ctx context.Context) (*types.Account, error) {
	if err := a.rec.record("Accounts.Get", "", ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	acc, ok := a.accounts[current.AccountId]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", types.ErrNotFound, current.AccountId)
	}

	out := acc.Account
	return &out, nil
}

func (a *Accounts) CreateEmailPasswordSession(ctx context.Context, email, password string) (*types.Session, error) {
	if err := a.rec.record("Accounts.CreateEmailPasswordSession", "", email); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var acc *account
	for _, candidate := range a.accounts {
		if candidate.Email == email {
			acc = candidate
			break
		}
	}
	if acc == nil || acc.password != password {
		return nil, fmt.Errorf("%w: invalid credentials", types.ErrUnauthorized)
	}

	id, err := tools.NewID()
	if err != nil {
		return nil, err
	}
	secret, err := tools.NewID()
	if err != nil {
		return nil, err
	}

	now := a.clock.tick()
	s := &types.Session{
		Id:        id,
		AccountId: acc.Id,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
		Secret:    secret,
	}
	a.sessions[id] = s

	out := *s
	return &out, nil
}

func (a *Accounts) GetSession(ctx context.Context, id string) (*types.Session, error) {
	if err := a.rec.record("Accounts.GetSession", "", id); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.owned(ctx, id)
	if err != nil {
		return nil, err
	}

	return public(s), nil
}

func (a *Accounts) ListSessions(ctx context.Context) ([]types.Session, error) {
	if err := a.rec.record("Accounts.ListSessions", "", ""); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	var out []types.Session
	for _, s := range a.sessions {
		if s.AccountId == current.AccountId {
			out = append(out, *public(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (a *Accounts) DeleteSession(ctx context.Context, id string) error {
	if err := a.rec.record("Accounts.DeleteSession", "", id); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.owned(ctx, id)
	if err != nil {
		return err
	}
	delete(a.sessions, s.Id)

	return nil
}

// HasSession reports whether a session is still stored.
func (a *Accounts) HasSession(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.sessions[id]
	return ok
}

// HasAccount reports whether an account is still stored.
func (a *Accounts) HasAccount(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.accounts[id]
	return ok
}

// current returns the stored session matching the one bound to ctx.
func (a *Accounts) current(ctx context.Context) (*types.Session, error) {
	bound := session.FromContext(ctx)
	if bound == nil {
		return nil, fmt.Errorf("%w: no session", types.ErrUnauthorized)
	}

	s, ok := a.sessions[bound.Id]
	if !ok || s.Secret != bound.Secret {
		return nil, fmt.Errorf("%w: invalid session", types.ErrUnauthorized)
	}

	return s, nil
}

// owned resolves id for the caller and checks it belongs to the same account.
func (a *Accounts) owned(ctx context.Context, id string) (*types.Session, error) {
	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	id, _ = session.Resolve(ctx, id)

	s, ok := a.sessions[id]
	if !ok || s.AccountId != current.AccountId {
		return nil, fmt.Errorf("%w: session %s", types.ErrNotFound, id)
	}

	return s, nil
}

func public(s *types.Session) *types.Session {
	out := *s
	out.Secret = ""
	return &out
}
