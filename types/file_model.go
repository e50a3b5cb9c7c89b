package types

import "io"

// File is an upload on its way to storage.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type StoredFile struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// PreviewOptions are the transforms applied when a stored image is rendered.
type PreviewOptions struct {
	Width   int
	Height  int
	Gravity string
	Quality int
}
