// Package store persists the single trained model artifact.
package store

import (
	"context"
	"errors"
	"fmt"

	"supplyscore/internal/model"
)

// DefaultKey is the fixed key of the model artifact in keyed backends.
const DefaultKey = "supplier-score-model"

// ErrNotFound is returned by Load when no artifact has been saved yet.
var ErrNotFound = errors.New("model artifact not found")

// CorruptError is returned by Load when an artifact exists but is not a usable model.
type CorruptError struct {
	Location string
	Err      error
}

// Error names the unusable artifact and the decoding failure.
func (e *CorruptError) Error() string {
	return fmt.Sprintf("model artifact at %s is corrupt: %v", e.Location, e.Err)
}

// Unwrap returns the decoding failure, usually wrapping model.ErrInvalidArtifact.
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// StorageError is returned when the backend itself fails to read or write.
type StorageError struct {
	Op       string
	Location string
	Err      error
}

// Error names the operation and location that failed.
func (e *StorageError) Error() string {
	return fmt.Sprintf("%s model artifact at %s: %v", e.Op, e.Location, e.Err)
}

// Unwrap returns the backend error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ModelStore saves and loads the one live model. Save replaces any previous artifact
// as a whole; there is no versioning. Implementations do not coordinate concurrent callers
// beyond the atomicity of a single Save.
type ModelStore interface {
	Save(ctx context.Context, m *model.Model) error
	Load(ctx context.Context) (*model.Model, error)
}

func encode(location string, m *model.Model) ([]byte, error) {
	data, err := model.Encode(m)
	if err != nil {
		return nil, &StorageError{Op: "save", Location: location, Err: err}
	}
	return data, nil
}

func decode(location string, data []byte) (*model.Model, error) {
	m, err := model.Decode(data)
	if err != nil {
		return nil, &CorruptError{Location: location, Err: err}
	}
	return m, nil
}
