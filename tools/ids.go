package tools

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a random id for documents, files and sessions.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("error generating id: %w", err)
	}

	return id.String(), nil
}

// IsID reports whether s looks like an id produced by NewID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
