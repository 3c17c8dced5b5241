package store

import (
	"context"
	"slices"
	"sync"

	"supplyscore/internal/model"
)

const memoryLocation = "memory"

// MemoryStore keeps the artifact in process memory. It is used in tests and
// for deployments that accept retraining after every restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save encodes m and replaces the stored bytes.
func (s *MemoryStore) Save(_ context.Context, m *model.Model) error {
	data, err := encode(memoryLocation, m)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// Load decodes the stored bytes. An empty store yields ErrNotFound.
func (s *MemoryStore) Load(_ context.Context) (*model.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, ErrNotFound
	}
	return decode(memoryLocation, s.data)
}

// SetRaw replaces the stored artifact with arbitrary bytes. A nil slice empties the store.
// It is a test seam for simulating corrupt or externally written artifacts.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
}

// Raw returns a copy of the stored artifact bytes, or nil when empty.
// It is a test seam for asserting whether a run replaced the artifact.
func (s *MemoryStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data)
}
