// Package blob stores uploaded document bytes on the local filesystem,
// addressed by caller-supplied collision-resistant names. Bytes are stored
// unmodified and returned unmodified.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("blob: not found")
	ErrInvalidName = errors.New("blob: invalid name")
)

// Store writes and removes blobs under a single directory.
type Store struct {
	dir string
}

// New ensures the storage directory exists and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("blob: directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("blob: ensure directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage root.
func (s *Store) Dir() string { return s.dir }

// Write persists data under name and returns the locator to store alongside
// the document metadata.
func (s *Store) Write(name string, data []byte) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", name, err)
	}
	return path, nil
}

// Open returns a reader over a stored blob.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blob: open %s: %w", name, err)
	}
	return f, nil
}

// Remove unlinks a blob. A missing file is not an error: removal is
// best-effort and callers treat the blob as gone either way.
func (s *Store) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob: remove %s: %w", name, err)
	}
	return nil
}

// path rejects names that would escape the storage directory.
func (s *Store) path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}
