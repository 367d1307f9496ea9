package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure MockSnapshotStore implements SnapshotStore
var _ driven.SnapshotStore = (*MockSnapshotStore)(nil)

// MockSnapshotStore is an in-memory SnapshotStore for testing
type MockSnapshotStore struct {
	mu       sync.RWMutex
	snapshot *domain.Snapshot
	SaveErr  error
	LoadErr  error
}

// NewMockSnapshotStore creates a new MockSnapshotStore, optionally pre-filled
func NewMockSnapshotStore(snapshot *domain.Snapshot) *MockSnapshotStore {
	return &MockSnapshotStore{snapshot: snapshot}
}

func (m *MockSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return m.snapshot, nil
}

func (m *MockSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snapshot = snapshot
	return nil
}

// Snapshot returns the stored snapshot
func (m *MockSnapshotStore) Snapshot() *domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
