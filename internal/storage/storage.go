// Package storage persists attachment binaries outside the database.
// Rows keep only the filename and content type; bytes live on a blob
// store under a path derived from the owning event's facility and
// occurrence date, so a facility's files are browsable by day.
package storage

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// Store saves and loads attachment content.
type Store interface {
	// Save writes data under facility/yyyy/mm/dd/filename and returns
	// the content type guessed from the filename extension.
	Save(facility string, when time.Time, filename string, data []byte) (string, error)
	// Load reads back the bytes saved under the same coordinates.
	Load(facility string, when time.Time, filename string) ([]byte, error)
}

// FileStore is the filesystem-backed Store.
type FileStore struct {
	base string
}

// NewFileStore creates a FileStore rooted at base.
func NewFileStore(base string) *FileStore {
	return &FileStore{base: base}
}

func (s *FileStore) path(facility string, when time.Time, filename string) string {
	return filepath.Join(s.base, facility,
		fmt.Sprintf("%04d", when.Year()),
		fmt.Sprintf("%02d", int(when.Month())),
		fmt.Sprintf("%02d", when.Day()),
		filename)
}

func (s *FileStore) Save(facility string, when time.Time, filename string, data []byte) (string, error) {
	path := s.path(facility, when, filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating attachment directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing attachment %s: %w", filename, err)
	}
	return ContentTypeFor(filename), nil
}

func (s *FileStore) Load(facility string, when time.Time, filename string) ([]byte, error) {
	data, err := os.ReadFile(s.path(facility, when, filename))
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", filename, err)
	}
	return data, nil
}

// ContentTypeFor guesses a content type from the filename extension,
// falling back to octet-stream.
func ContentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
