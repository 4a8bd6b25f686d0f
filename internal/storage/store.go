package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore is the external collaborator that keeps attachment bytes.
// Save returns a stable key later used to retrieve or delete the file.
type FileStore interface {
	Save(name, contentType string, data []byte) (string, error)
	Open(key string) (io.ReadCloser, error)
	Delete(key string) error
}

// DiskStore stores files under a root directory, one file per key.
type DiskStore struct {
	Root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{Root: root}, nil
}

// Save writes the data under a fresh UUID-based key. The original file name
// only contributes its extension; the key never contains caller input.
func (s *DiskStore) Save(name, contentType string, data []byte) (string, error) {
	key := uuid.New().String() + filepath.Ext(filepath.Base(name))
	if err := os.WriteFile(filepath.Join(s.Root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return key, nil
}

// Open returns a reader over the stored file.
func (s *DiskStore) Open(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Root, filepath.Base(key)))
}

// Delete removes the stored file. Missing files are not an error.
func (s *DiskStore) Delete(key string) error {
	err := os.Remove(filepath.Join(s.Root, filepath.Base(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemStore is an in-memory FileStore used by tests.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

func (s *MemStore) Save(name, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uuid.New().String()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.files[key] = buf
	return key, nil
}

func (s *MemStore) Open(key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

// Len reports how many files the store holds.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
