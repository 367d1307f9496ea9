package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/folio/internal/adapters/driven/cmsapi"
	redisadapter "github.com/custodia-labs/folio/internal/adapters/driven/redis"
	"github.com/custodia-labs/folio/internal/adapters/driven/snapshot"
	"github.com/custodia-labs/folio/internal/config"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/eventbus"
	"github.com/custodia-labs/folio/internal/runtime"
)

// app is the wiring shared by serve and prefetch
type app struct {
	cfg    config.Config
	logger *slog.Logger

	state     *runtime.State
	resolver  *services.SettingsResolver
	bus       *eventbus.Bus
	api       *cmsapi.Client
	content   *services.ContentService
	prefetch  driving.PrefetchService
	fileStore *snapshot.FileStore

	// Set only when REDIS_URL is configured
	redis *goredis.Client
	lock  *redisadapter.Lock
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		api:       cmsapi.NewClient(cfg.HTTPTimeout),
		bus:       eventbus.New(logger),
		fileStore: snapshot.NewFileStore(cfg.SnapshotPath),
	}

	pushBackend := "local"
	stores := []driven.SnapshotStore{a.fileStore}
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		a.redis = goredis.NewClient(opts)
		a.lock = redisadapter.NewLock(a.redis)
		stores = append(stores, redisadapter.NewSnapshotStore(a.redis))
		pushBackend = "redis"
	}

	a.state = runtime.NewState(domain.NewRuntimeConfig(pushBackend, cfg.Env.Production), "")
	a.resolver = services.NewSettingsResolver(services.SettingsResolverConfig{
		Environment: cfg.Env,
		State:       a.state,
		Logger:      logger,
	})
	a.content = services.NewContentService(services.ContentServiceConfig{
		API:      a.api,
		Resolver: a.resolver,
		State:    a.state,
		Bus:      a.bus,
		Logger:   logger,
	})

	prefetchCfg := services.PrefetchServiceConfig{
		API:      a.api,
		Resolver: a.resolver,
		State:    a.state,
		Stores:   stores,
		Logger:   logger,
	}
	if a.lock != nil {
		prefetchCfg.Lock = a.lock
	}
	a.prefetch = services.NewPrefetchService(prefetchCfg)
	return a, nil
}

// restore installs the stored snapshot, if any, as the fallback layer
func (a *app) restore(ctx context.Context) {
	snap, err := a.prefetch.Restore(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.logger.Info("no CMS snapshot found, using compiled-in defaults")
	case err != nil:
		a.logger.Warn("failed to restore CMS snapshot", "error", err)
	default:
		a.logger.Debug("snapshot restored", "fetched_at", snap.FetchedAt)
	}
}

// republish applies a snapshot rewritten on disk as live push updates
func (a *app) republish(ctx context.Context, snap *domain.Snapshot) {
	if snap.Content != nil {
		a.state.SetFallbackContent(snap.Content)
		a.content.PublishContent(*snap.Content)
	}
	if !snap.Settings.IsEmpty() {
		a.resolver.SetBaseline(snap.Settings)
		a.content.PublishSettings(snap.Settings)
	}
}

func (a *app) Close() error {
	var errs []error
	errs = append(errs, a.api.Close())
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
