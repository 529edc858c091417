package session

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage used in tests and when the app
// runs without a device store configured.
type MemoryStorage struct {
	mu   sync.Mutex
	snap *Snapshot

	// FailNextSave injects a persistence failure for rollback tests.
	FailNextSave error
}

// NewMemoryStorage returns an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

var _ Storage = (*MemoryStorage)(nil)

func (s *MemoryStorage) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil || s.snap.User == nil {
		return nil, ErrSnapshotNotFound
	}

	return s.snap.Clone(), nil
}

func (s *MemoryStorage) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextSave != nil {
		err := s.FailNextSave
		s.FailNextSave = nil
		return err
	}

	s.snap = snap.Clone()
	return nil
}

func (s *MemoryStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = nil
	return nil
}
