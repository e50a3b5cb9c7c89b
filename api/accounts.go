package api

import (
	"context"
	"errors"
	"fmt"

	"snapgram_api/session"
	"snapgram_api/tools"
	"snapgram_api/types"

	"golang.org/x/sync/errgroup"
)

// CreateUserAccount creates the auth account and its profile document. The
// account is removed again when the profile cannot be stored.
func (s *Service) CreateUserAccount(ctx context.Context, in NewUser) (*types.User, error) {
	const op = "CreateUserAccount"

	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	accountID, err := tools.NewID()
	if err != nil {
		return nil, wrap(op, err)
	}

	account, err := s.accounts.Create(ctx, accountID, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, wrap(op, err)
	}

	g := s.newSaga(op)
	g.onFailure("DeleteAccount", func(ctx context.Context) error {
		return s.accounts.Delete(ctx, account.Id)
	})

	user, err := s.saveUserToDB(ctx, account, in.Username, s.avatars.GetInitials(account.Name))
	if err != nil {
		return nil, g.abort(ctx, err)
	}

	return user, nil
}

func (s *Service) saveUserToDB(ctx context.Context, account *types.Account, username, imageURL string) (*types.User, error) {
	id, err := tools.NewID()
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.Create(ctx, types.FIREBASE_USERS_COLLECTION, id, map[string]interface{}{
		types.FIREBASE_USERS_FIELDS_ACCOUNT_ID: account.Id,
		types.FIREBASE_USERS_FIELDS_NAME:       account.Name,
		types.FIREBASE_USERS_FIELDS_EMAIL:      account.Email,
		types.FIREBASE_USERS_FIELDS_USERNAME:   username,
		types.FIREBASE_USERS_FIELDS_IMAGE_URL:  imageURL,
		types.FIREBASE_USERS_FIELDS_IMAGE_ID:   "",
		types.FIREBASE_USERS_FIELDS_BIO:        "",
	})
	if err != nil {
		return nil, err
	}

	return decodeUser(doc)
}

func (s *Service) SignInAccount(ctx context.Context, in SignIn) (*types.Session, error) {
	const op = "SignInAccount"

	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	session, err := s.accounts.CreateEmailPasswordSession(ctx, in.Email, in.Password)
	if err != nil {
		return nil, wrap(op, err)
	}

	return session, nil
}

// GetCurrentUser resolves the profile of the session bound to ctx.
func (s *Service) GetCurrentUser(ctx context.Context) (*types.User, error) {
	const op = "GetCurrentUser"

	account, err := s.accounts.Get(ctx)
	if err != nil {
		return nil, wrap(op, err)
	}

	q := types.Query{}.Where(types.FIREBASE_USERS_FIELDS_ACCOUNT_ID, account.Id).WithLimit(1)
	docs, err := s.documents.List(ctx, types.FIREBASE_USERS_COLLECTION, q)
	if err != nil {
		return nil, wrap(op, err)
	}

	if len(docs) == 0 {
		return nil, &Error{Op: op, Kind: types.ErrNotFound, Err: fmt.Errorf("no profile for account %s", account.Id)}
	}

	user, err := decodeUser(&docs[0])
	if err != nil {
		return nil, wrap(op, err)
	}

	return user, nil
}

func (s *Service) SignOutAccount(ctx context.Context) error {
	return wrap("SignOutAccount", s.accounts.DeleteSession(ctx, types.CURRENT_SESSION))
}

// CheckActiveSession reports whether ctx carries a live session. Only failures
// other than a missing or rejected session are returned as errors.
func (s *Service) CheckActiveSession(ctx context.Context) (bool, error) {
	_, err := s.accounts.GetSession(ctx, types.CURRENT_SESSION)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, types.ErrUnauthorized), errors.Is(err, types.ErrNotFound):
		return false, nil
	default:
		return false, wrap("CheckActiveSession", err)
	}
}

// DeleteSessions invalidates every session of the current account. The
// caller's own session goes last since the others are deleted on its behalf.
func (s *Service) DeleteSessions(ctx context.Context) error {
	const op = "DeleteSessions"

	sessions, err := s.accounts.ListSessions(ctx)
	if err != nil {
		return wrap(op, err)
	}

	currentID, _ := session.Resolve(ctx, types.CURRENT_SESSION)
	ownSession := false

	g, gctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		if sess.Id == currentID {
			ownSession = true
			continue
		}

		id := sess.Id
		g.Go(func() error {
			err := s.accounts.DeleteSession(gctx, id)
			if errors.Is(err, types.ErrNotFound) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return wrap(op, err)
	}

	if ownSession {
		return wrap(op, s.accounts.DeleteSession(ctx, currentID))
	}
	return nil
}
