package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/runtime"
)

// Ensure prefetchService implements PrefetchService
var _ driving.PrefetchService = (*prefetchService)(nil)

// prefetchService bakes the current CMS data into a snapshot
type prefetchService struct {
	api      driven.CMSAPI
	resolver *SettingsResolver
	state    *runtime.State
	stores   []driven.SnapshotStore
	lock     driven.DistributedLock
	logger   *slog.Logger
	now      func() time.Time
}

// PrefetchServiceConfig holds configuration for the prefetch service
type PrefetchServiceConfig struct {
	API      driven.CMSAPI
	Resolver *SettingsResolver
	State    *runtime.State

	// Stores are written in order on Prefetch and read in order on Restore
	Stores []driven.SnapshotStore

	// Lock, when set, keeps concurrent prefetch runs from racing on shared stores
	Lock   driven.DistributedLock
	Logger *slog.Logger
}

const (
	prefetchLockName = "prefetch"
	prefetchLockTTL  = time.Minute
)

// NewPrefetchService creates a new PrefetchService
func NewPrefetchService(cfg PrefetchServiceConfig) driving.PrefetchService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &prefetchService{
		api:      cfg.API,
		resolver: cfg.Resolver,
		state:    cfg.State,
		stores:   cfg.Stores,
		lock:     cfg.Lock,
		logger:   logger,
		now:      time.Now,
	}
}

// Prefetch fetches content and settings together.
// If either fetch fails neither is kept, and the snapshot is saved empty.
func (s *prefetchService) Prefetch(ctx context.Context) (*domain.Snapshot, error) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, prefetchLockName, prefetchLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire prefetch lock: %w", err)
		}
		if !acquired {
			return nil, domain.ErrLocked
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), prefetchLockName); err != nil {
				s.logger.Warn("failed to release prefetch lock", "error", err)
			}
		}()
	}

	base := s.state.APIBase()
	s.logger.Info("fetching CMS data", "api_base", base)

	var content *domain.Content
	var settings *domain.SettingsPatch

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.api.FetchContent(gctx, base)
		if err != nil {
			return fmt.Errorf("fetch content: %w", err)
		}
		if c == nil {
			return errors.New("fetch content: empty document")
		}
		content = c
		return nil
	})
	g.Go(func() error {
		p, err := s.api.FetchSettings(gctx, base)
		if err != nil {
			return fmt.Errorf("fetch settings: %w", err)
		}
		settings = p
		return nil
	})

	snapshot := &domain.Snapshot{FetchedAt: s.now().UTC()}
	if err := g.Wait(); err != nil {
		s.logger.Warn("could not fetch CMS data, snapshot will use defaults", "error", err)
	} else {
		snapshot.Content = content
		snapshot.Settings = settings
		s.logger.Info("CMS data fetched")
	}

	for _, store := range s.stores {
		if err := store.Save(ctx, snapshot); err != nil {
			return snapshot, fmt.Errorf("save snapshot: %w", err)
		}
	}
	return snapshot, nil
}

// Restore installs the first stored snapshot as the fallback layer
func (s *prefetchService) Restore(ctx context.Context) (*domain.Snapshot, error) {
	for _, store := range s.stores {
		snapshot, err := store.Load(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if !snapshot.HasData() {
			continue
		}

		s.state.SetFallbackContent(snapshot.Content)
		if s.resolver != nil {
			s.resolver.SetBaseline(snapshot.Settings)
			s.resolver.Merge(nil)
		}
		s.logger.Info("restored CMS snapshot",
			"fetched_at", snapshot.FetchedAt,
			"has_content", snapshot.Content != nil,
			"has_settings", !snapshot.Settings.IsEmpty(),
		)
		return snapshot, nil
	}
	return nil, domain.ErrNotFound
}
