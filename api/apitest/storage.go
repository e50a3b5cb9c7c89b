package apitest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"snapgram_api/tools"
	"snapgram_api/types"
)

type object struct {
	types.StoredFile
	content []byte
}

// Storage is an in-memory file bucket.
type Storage struct {
	rec *Recorder

	mu      sync.Mutex
	objects map[string]*object
}

func newStorage(rec *Recorder) *Storage {
	return &Storage{rec: rec, objects: map[string]*object{}}
}

func (s *Storage) CreateFile(ctx context.Context, id string, file types.File) (*types.StoredFile, error) {
	if err := s.rec.record("Storage.CreateFile", "", id); err != nil {
		return nil, err
	}

	var content []byte
	if file.Content != nil {
		b, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, fmt.Errorf("error reading upload: %w", err)
		}
		content = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; ok {
		return nil, fmt.Errorf("%w: file %s", types.ErrConflict, id)
	}

	obj := &object{
		StoredFile: types.StoredFile{
			Id:          id,
			Name:        file.Name,
			ContentType: file.ContentType,
			Size:        int64(len(content)),
		},
		content: content,
	}
	s.objects[id] = obj

	out := obj.StoredFile
	return &out, nil
}

func (s *Storage) GetFilePreview(ctx context.Context, id string, opts types.PreviewOptions) (string, error) {
	if err := s.rec.record("Storage.GetFilePreview", "", id); err != nil {
		return "", err
	}

	if !s.Has(id) {
		return "", fmt.Errorf("%w: file %s", types.ErrNotFound, id)
	}

	return tools.PreviewURL(FilesBaseURL, id, opts), nil
}

func (s *Storage) DeleteFile(ctx context.Context, id string) error {
	if err := s.rec.record("Storage.DeleteFile", "", id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("%w: file %s", types.ErrNotFound, id)
	}
	delete(s.objects, id)

	return nil
}

// OpenFile returns the content of a stored file.
func (s *Storage) OpenFile(ctx context.Context, id string) (io.ReadCloser, *types.StoredFile, error) {
	if err := s.rec.record("Storage.OpenFile", "", id); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: file %s", types.ErrNotFound, id)
	}

	info := obj.StoredFile
	return io.NopCloser(bytes.NewReader(obj.content)), &info, nil
}

// Has reports whether a file is stored.
func (s *Storage) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[id]
	return ok
}

// Files returns the ids of every stored file, sorted.
func (s *Storage) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.objects))
	for id := range s.objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
