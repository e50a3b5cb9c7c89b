package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snapgram_api/session"
	"snapgram_api/tools"
	"snapgram_api/types"

	"firebase.google.com/go/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
)

// Identity Toolkit reason for too many failed sign-ins in a short time.
const signInThrottled = "TOO_MANY_ATTEMPTS_TRY_LATER"

// Accounts signs users in with Firebase Auth. A session is a Firebase session
// cookie paired with a record in the sessions collection; deleting the record
// ends the session even though the cookie itself stays valid until it expires.
type Accounts struct {
	auth     *auth.Client
	identity *identitytoolkit.Service
	docs     *Documents
	ttl      time.Duration
}

func NewAccounts(authClient *auth.Client, identity *identitytoolkit.Service, docs *Documents, ttl time.Duration) *Accounts {
	return &Accounts{auth: authClient, identity: identity, docs: docs, ttl: ttl}
}

func (a *Accounts) Create(ctx context.Context, id, email, password, name string) (*types.Account, error) {
	params := (&auth.UserToCreate{}).
		UID(id).
		Email(email).
		Password(password).
		DisplayName(name)

	record, err := a.auth.CreateUser(ctx, params)
	if err != nil {
		return nil, classify(err)
	}

	return toAccount(record), nil
}

func (a *Accounts) Delete(ctx context.Context, id string) error {
	return classify(a.auth.DeleteUser(ctx, id))
}

func (a *Accounts) Get(ctx context.Context) (*types.Account, error) {
	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	record, err := a.auth.GetUser(ctx, current.AccountId)
	if err != nil {
		return nil, classify(err)
	}

	return toAccount(record), nil
}

func (a *Accounts) CreateEmailPasswordSession(ctx context.Context, email, password string) (*types.Session, error) {
	resp, err := a.identity.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, signInError(err)
	}

	cookie, err := a.auth.SessionCookie(ctx, resp.IdToken, a.ttl)
	if err != nil {
		return nil, classify(err)
	}

	id, err := tools.NewID()
	if err != nil {
		return nil, err
	}

	doc, err := a.docs.Create(ctx, types.FIREBASE_SESSIONS_COLLECTION, id, map[string]interface{}{
		types.FIREBASE_SESSIONS_FIELDS_ACCOUNT_ID: resp.LocalId,
		types.FIREBASE_SESSIONS_FIELDS_EXPIRES_AT: time.Now().UTC().Add(a.ttl),
	})
	if err != nil {
		return nil, err
	}

	s, err := toSession(doc)
	if err != nil {
		return nil, err
	}
	s.Secret = cookie

	return s, nil
}

func (a *Accounts) GetSession(ctx context.Context, id string) (*types.Session, error) {
	return a.owned(ctx, id)
}

func (a *Accounts) ListSessions(ctx context.Context) ([]types.Session, error) {
	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	q := types.Query{}.
		Where(types.FIREBASE_SESSIONS_FIELDS_ACCOUNT_ID, current.AccountId).
		Order(types.FIREBASE_FIELDS_CREATED_AT, types.Asc)

	docs, err := a.docs.List(ctx, types.FIREBASE_SESSIONS_COLLECTION, q)
	if err != nil {
		return nil, err
	}

	sessions := make([]types.Session, 0, len(docs))
	for i := range docs {
		s, err := toSession(&docs[i])
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}

	return sessions, nil
}

func (a *Accounts) DeleteSession(ctx context.Context, id string) error {
	s, err := a.owned(ctx, id)
	if err != nil {
		return err
	}

	return a.docs.Delete(ctx, types.FIREBASE_SESSIONS_COLLECTION, s.Id)
}

// current verifies the session bound to ctx: the cookie must be valid and
// unrevoked and its record must still exist for the same account.
func (a *Accounts) current(ctx context.Context) (*types.Session, error) {
	bound := session.FromContext(ctx)
	if bound == nil {
		return nil, fmt.Errorf("%w: no session", types.ErrUnauthorized)
	}

	token, err := a.auth.VerifySessionCookieAndCheckRevoked(ctx, bound.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	doc, err := a.docs.Get(ctx, types.FIREBASE_SESSIONS_COLLECTION, bound.Id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("%w: session %s ended", types.ErrUnauthorized, bound.Id)
	}
	if err != nil {
		return nil, err
	}

	s, err := toSession(doc)
	if err != nil {
		return nil, err
	}
	if s.AccountId != token.UID {
		return nil, fmt.Errorf("%w: session %s belongs to another account", types.ErrUnauthorized, bound.Id)
	}

	return s, nil
}

// owned loads session id, or the current one, and checks it belongs to the
// account of the caller.
func (a *Accounts) owned(ctx context.Context, id string) (*types.Session, error) {
	current, err := a.current(ctx)
	if err != nil {
		return nil, err
	}

	id, _ = session.Resolve(ctx, id)
	if id == current.Id {
		return current, nil
	}

	doc, err := a.docs.Get(ctx, types.FIREBASE_SESSIONS_COLLECTION, id)
	if err != nil {
		return nil, err
	}

	s, err := toSession(doc)
	if err != nil {
		return nil, err
	}
	if s.AccountId != current.AccountId {
		return nil, fmt.Errorf("%w: session %s", types.ErrNotFound, id)
	}

	return s, nil
}

func toAccount(record *auth.UserRecord) *types.Account {
	return &types.Account{
		Id:    record.UID,
		Name:  record.DisplayName,
		Email: record.Email,
	}
}

func toSession(doc *types.Document) (*types.Session, error) {
	accountID, _ := doc.Data[types.FIREBASE_SESSIONS_FIELDS_ACCOUNT_ID].(string)
	if accountID == "" {
		return nil, fmt.Errorf("%w: session %s has no account", types.ErrMalformed, doc.Id)
	}

	expiresAt, _ := doc.Data[types.FIREBASE_SESSIONS_FIELDS_EXPIRES_AT].(time.Time)

	return &types.Session{
		Id:        doc.Id,
		AccountId: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// signInError reports rejected credentials as unauthorized. Identity Toolkit
// answers them with 400 and a reason such as INVALID_PASSWORD, and uses the
// same status when it throttles an account.
func signInError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 400 {
		if strings.Contains(apiErr.Message, signInThrottled) {
			return fmt.Errorf("%w: %s", types.ErrUnavailable, apiErr.Message)
		}
		return fmt.Errorf("%w: %s", types.ErrUnauthorized, apiErr.Message)
	}
	return classify(err)
}
