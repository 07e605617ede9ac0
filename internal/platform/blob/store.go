// Package blob provides filesystem backed object storage for user uploads.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the object does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Store persists named objects under a root directory. Object names use
// forward slashes and must not escape the root.
type Store struct {
	root string
}

// NewStore constructs a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("blob: root dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Put writes the object, replacing any previous contents.
func (s *Store) Put(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("blob: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Get returns the object contents or ErrNotFound.
func (s *Store) Get(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Exists reports whether the object is present.
func (s *Store) Exists(name string) (bool, error) {
	path, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the object. Deleting a missing object returns ErrNotFound.
func (s *Store) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return "", errors.New("blob: object name required")
	}
	path := filepath.Join(s.root, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("blob: invalid object name %q", name)
	}
	return path, nil
}
