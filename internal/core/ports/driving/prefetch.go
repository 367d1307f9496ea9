package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PrefetchService captures and restores the deploy-time CMS snapshot
type PrefetchService interface {
	// Prefetch fetches content and settings and saves the snapshot.
	// A failed fetch yields a snapshot without data, not an error.
	Prefetch(ctx context.Context) (*domain.Snapshot, error)

	// Restore loads the stored snapshot and installs it as the fallback layer
	Restore(ctx context.Context) (*domain.Snapshot, error)
}
