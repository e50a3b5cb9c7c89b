package api

import (
	"context"
	"errors"

	"snapgram_api/tools"
	"snapgram_api/types"
)

func (s *Service) SavePost(ctx context.Context, userID, postID string) (*types.Save, error) {
	const op = "SavePost"

	if userID == "" || postID == "" {
		return nil, invalid(op, "user id and post id are required")
	}

	id, err := tools.NewID()
	if err != nil {
		return nil, wrap(op, err)
	}

	doc, err := s.documents.Create(ctx, types.FIREBASE_SAVES_COLLECTION, id, map[string]interface{}{
		types.FIREBASE_SAVES_FIELDS_USER: userID,
		types.FIREBASE_SAVES_FIELDS_POST: postID,
	})
	if err != nil {
		return nil, wrap(op, err)
	}

	save, err := decodeSave(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return save, nil
}

func (s *Service) DeleteSavedPost(ctx context.Context, saveID string) error {
	const op = "DeleteSavedPost"

	if saveID == "" {
		return invalid(op, "save id is required")
	}

	return wrap(op, s.documents.Delete(ctx, types.FIREBASE_SAVES_COLLECTION, saveID))
}

func (s *Service) GetSaveByID(ctx context.Context, saveID string) (*types.Save, error) {
	const op = "GetSaveByID"

	if saveID == "" {
		return nil, invalid(op, "save id is required")
	}

	doc, err := s.documents.Get(ctx, types.FIREBASE_SAVES_COLLECTION, saveID)
	if err != nil {
		return nil, wrap(op, err)
	}

	save, err := decodeSave(doc)
	if err != nil {
		return nil, wrap(op, err)
	}

	return save, nil
}

// GetSavedPosts returns the posts a user saved, most recent save first. Saves
// whose post is gone are skipped.
func (s *Service) GetSavedPosts(ctx context.Context, userID string) ([]types.Post, error) {
	const op = "GetSavedPosts"

	if userID == "" {
		return nil, invalid(op, "user id is required")
	}

	q := types.Query{}.
		Where(types.FIREBASE_SAVES_FIELDS_USER, userID).
		Order(types.FIREBASE_FIELDS_CREATED_AT, types.Desc)

	docs, err := s.documents.List(ctx, types.FIREBASE_SAVES_COLLECTION, q)
	if err != nil {
		return nil, wrap(op, err)
	}

	posts := make([]types.Post, 0, len(docs))
	for i := range docs {
		save, err := decodeSave(&docs[i])
		if err != nil {
			return nil, wrap(op, err)
		}

		post, err := s.GetPostByID(ctx, save.Post)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, wrap(op, err)
		}

		posts = append(posts, *post)
	}

	return posts, nil
}
