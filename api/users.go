package api

import (
	"context"
	"errors"

	"snapgram_api/types"
)

// GetUsers lists profiles, newest first. A limit of 0 lists all of them.
func (s *Service) GetUsers(ctx context.Context, limit int) ([]types.User, error) {
	const op = "GetUsers"

	if limit < 0 {
		return nil, invalid(op, "limit must not be negative")
	}

	q := types.Query{}.Order(types.FIREBASE_FIELDS_CREATED_AT, types.Desc).WithLimit(limit)

	docs, err := s.documents.List(ctx, types.FIREBASE_USERS_COLLECTION, q)
	if err != nil {
		return nil, wrap(op, err)
	}

	users := make([]types.User, 0, len(docs))
	for i := range docs {
		user, err := decodeUser(&docs[i])
		if err != nil {
			return nil, wrap(op, err)
		}
		users = append(users, *user)
	}

	return users, nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	const op = "GetUserByID"

	if id == "" {
		return nil, invalid(op, "user id is required")
	}

	doc, err := s.documents.Get(ctx, types.FIREBASE_USERS_COLLECTION, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	user, err := decodeUser(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return user, nil
}

// UpdateUser rewrites name and bio and, when File is set, replaces the
// avatar with the same upload, link, delete-old sequence as UpdatePost.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUser) (*types.User, error) {
	const op = "UpdateUser"

	if err := s.validateInput(op, in); err != nil {
		return nil, err
	}

	image := imageRef{id: in.ImageID, url: in.ImageURL}
	g := s.newSaga(op)

	if in.File != nil {
		uploaded, err := s.uploadImage(ctx, op, in.File)
		if err != nil {
			return nil, err
		}
		g.deleteFileOnFailure(uploaded.id)

		if uploaded.url, err = s.storage.GetFilePreview(ctx, uploaded.id, s.previews); err != nil {
			return nil, g.abort(ctx, err)
		}
		image = uploaded
	}

	doc, err := s.documents.Update(ctx, types.FIREBASE_USERS_COLLECTION, in.UserID, map[string]interface{}{
		types.FIREBASE_USERS_FIELDS_NAME:      in.Name,
		types.FIREBASE_USERS_FIELDS_BIO:       in.Bio,
		types.FIREBASE_USERS_FIELDS_IMAGE_URL: image.url,
		types.FIREBASE_USERS_FIELDS_IMAGE_ID:  image.id,
	})
	if err != nil {
		return nil, g.abort(ctx, err)
	}

	// Initials avatars have no stored file behind them.
	if in.File != nil && in.ImageID != "" && in.ImageID != image.id {
		_ = s.discardFile(ctx, op, in.ImageID, "replaced")
	}

	user, err := decodeUser(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return user, nil
}

// SetMessagingToken stores the push registration token of a user.
func (s *Service) SetMessagingToken(ctx context.Context, userID, token string) error {
	const op = "SetMessagingToken"

	if userID == "" || token == "" {
		return invalid(op, "user id and token are required")
	}

	data := map[string]interface{}{types.FIREBASE_MESSAGING_TOKEN_FIELDS_TOKEN: token}

	_, err := s.documents.Update(ctx, types.FIREBASE_MESSAGING_TOKEN_COLLECTION, userID, data)
	if errors.Is(err, types.ErrNotFound) {
		_, err = s.documents.Create(ctx, types.FIREBASE_MESSAGING_TOKEN_COLLECTION, userID, data)
	}

	return wrap(op, err)
}
