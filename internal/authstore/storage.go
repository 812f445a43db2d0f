// Package authstore holds the operator's authenticated session: the logged-in
// user and token pair, persisted through pluggable storage scopes. A session
// scope always receives the snapshot; a remembered scope receives it only
// when the operator asked to stay signed in, and is used to restore the
// session scope on a fresh start.
package authstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Storage.Load when no snapshot exists.
var ErrNotFound = errors.New("authstore: snapshot not found")

// Storage persists opaque snapshots under string keys. Implementations
// decide the scope (per-process, per-machine) and the medium.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
	Delete(key string) error
}

// FileStorage is a Storage backed by one file per key inside a directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory (0700) if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *FileStorage) Save(key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0o600)
}

func (s *FileStorage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryStorage is an in-memory Storage for tests and ephemeral sessions.
type MemoryStorage struct {
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (s *MemoryStorage) Load(key string) ([]byte, error) {
	d, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStorage) Save(key string, data []byte) error {
	s.data[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	delete(s.data, key)
	return nil
}
