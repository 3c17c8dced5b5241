package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"supplyscore/internal/model"
)

// FileStore keeps the artifact in a single file on the local filesystem.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: filepath.Clean(path)}
}

// Save writes the artifact to a temporary file in the same directory and renames it
// over the previous one, so readers observe either the old or the new artifact.
func (f *FileStore) Save(_ context.Context, m *model.Model) error {
	data, err := encode(f.path, m)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("mkdir: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("create: %w", err)}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("write: %w", err)}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("sync: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("close: %w", err)}
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return &StorageError{Op: "save", Location: f.path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

// Load reads and decodes the artifact.
func (f *FileStore) Load(_ context.Context) (*model.Model, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Location: f.path, Err: err}
	}
	return decode(f.path, data)
}
