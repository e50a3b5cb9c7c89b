package firebase

import (
	"context"
	"fmt"
	"io"

	"snapgram_api/tools"
	"snapgram_api/types"

	"cloud.google.com/go/storage"
)

const metadataName = "name"

// Storage keeps uploaded files in the Firebase Storage bucket under
// types.FIREBASE_STORAGE_FILES_FOLDER. Previews are rendered by this service
// at publicURL.
type Storage struct {
	bucket    *storage.BucketHandle
	publicURL string
}

func NewStorage(client *storage.Client, bucket, publicURL string) *Storage {
	return &Storage{bucket: client.Bucket(bucket), publicURL: publicURL}
}

func objectPath(id string) string {
	return types.FIREBASE_STORAGE_FILES_FOLDER + id
}

func (s *Storage) CreateFile(ctx context.Context, id string, file types.File) (*types.StoredFile, error) {
	obj := s.bucket.Object(objectPath(id)).If(storage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = file.ContentType
	w.Metadata = map[string]string{metadataName: file.Name}

	if _, err := io.Copy(w, file.Content); err != nil {
		_ = w.Close()
		return nil, classify(fmt.Errorf("error uploading file %s: %w", id, err))
	}
	if err := w.Close(); err != nil {
		return nil, classify(err)
	}

	attrs := w.Attrs()
	return &types.StoredFile{
		Id:          id,
		Name:        file.Name,
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
	}, nil
}

func (s *Storage) GetFilePreview(ctx context.Context, id string, opts types.PreviewOptions) (string, error) {
	if _, err := s.bucket.Object(objectPath(id)).Attrs(ctx); err != nil {
		return "", classify(err)
	}

	return tools.PreviewURL(s.publicURL, id, opts), nil
}

func (s *Storage) DeleteFile(ctx context.Context, id string) error {
	return classify(s.bucket.Object(objectPath(id)).Delete(ctx))
}

// OpenFile streams a stored file. The caller closes the reader.
func (s *Storage) OpenFile(ctx context.Context, id string) (io.ReadCloser, *types.StoredFile, error) {
	obj := s.bucket.Object(objectPath(id))

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return nil, nil, classify(err)
	}

	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, nil, classify(err)
	}

	return r, &types.StoredFile{
		Id:          id,
		Name:        attrs.Metadata[metadataName],
		ContentType: attrs.ContentType,
		Size:        attrs.Size,
	}, nil
}
