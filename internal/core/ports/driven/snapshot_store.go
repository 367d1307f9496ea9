package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// SnapshotStore persists the prefetched CMS snapshot (file or Redis)
type SnapshotStore interface {
	// Load returns the stored snapshot, or domain.ErrNotFound
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}
