package api

import (
	"context"
	"fmt"

	"snapgram_api/types"
)

// imageReferences are the document fields that link a stored file.
var imageReferences = []struct {
	collection string
	field      string
}{
	{types.FIREBASE_POSTS_COLLECTION, types.FIREBASE_POSTS_FIELDS_IMAGE_ID},
	{types.FIREBASE_USERS_COLLECTION, types.FIREBASE_USERS_FIELDS_IMAGE_ID},
}

// DeleteUnreferencedFile removes a stored file that no post or profile links
// to. A file still in use is kept and reported as a conflict.
func (s *Service) DeleteUnreferencedFile(ctx context.Context, fileID string) error {
	const op = "DeleteUnreferencedFile"

	if fileID == "" {
		return invalid(op, "file id is required")
	}

	for _, ref := range imageReferences {
		q := types.Query{}.Where(ref.field, fileID).WithLimit(1)

		docs, err := s.documents.List(ctx, ref.collection, q)
		if err != nil {
			return wrap(op, err)
		}
		if len(docs) > 0 {
			return &Error{Op: op, Kind: types.ErrConflict, Err: fmt.Errorf("file %s is used by %s/%s", fileID, ref.collection, docs[0].Id)}
		}
	}

	return wrap(op, s.storage.DeleteFile(ctx, fileID))
}
