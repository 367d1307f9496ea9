package binding

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Config holds the collaborators shared by every binding
type Config struct {
	Service  driving.ContentService
	Notifier driven.Notifier // Optional: nil drops notifications
	Logger   *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// ContentState is what a ContentBinding exposes
type ContentState struct {
	Content   domain.Content
	IsLoading bool
	Err       error
}

// ContentBinding keeps the site content current: it loads once on Mount and
// then follows push updates until Unmount.
type ContentBinding struct {
	lc       lifecycle[ContentState]
	svc      driving.ContentService
	notifier driven.Notifier
	logger   *slog.Logger

	// guarded by lc.mu
	state  ContentState
	errors errorMemory
}

// NewContentBinding creates an unmounted binding showing the fallback content
func NewContentBinding(cfg Config) *ContentBinding {
	return &ContentBinding{
		svc:      cfg.Service,
		notifier: cfg.Notifier,
		logger:   cfg.logger(),
		state: ContentState{
			Content:   cfg.Service.FallbackContent(),
			IsLoading: true,
		},
	}
}

// Mount starts the content load and subscribes to push updates
func (b *ContentBinding) Mount(ctx context.Context) {
	gen := b.lc.begin()
	b.state.IsLoading = true
	b.lc.publish(b.copyLocked())

	b.lc.run(func() {
		b.applyLoad(ctx, gen, b.svc.LoadContent(ctx))
	})
	b.lc.keep(gen, b.svc.SubscribeContent(func(c domain.Content) {
		b.applyPush(gen, c)
	}))
}

// Unmount stops all further state updates
func (b *ContentBinding) Unmount() {
	b.lc.end()
}

// Wait blocks until in-flight loads have finished
func (b *ContentBinding) Wait() {
	b.lc.wait()
}

// State returns a copy of the current state
func (b *ContentBinding) State() ContentState {
	b.lc.mu.Lock()
	defer b.lc.mu.Unlock()
	return b.copyLocked()
}

// OnChange registers fn to receive the state after every applied change.
// fn must not call Mount.
func (b *ContentBinding) OnChange(fn func(ContentState)) func() {
	return b.lc.observe(fn)
}

func (b *ContentBinding) applyLoad(ctx context.Context, gen uint64, res driving.ContentResult) {
	if !b.lc.current(gen) {
		b.logger.Debug("discarding content load after unmount")
		return
	}

	b.state.Content = res.Content
	b.state.Err = res.Err
	b.state.IsLoading = false
	notify := b.errors.observe(res.Err, "failed to load site content")
	b.lc.publish(b.copyLocked())

	if notify && b.notifier != nil {
		b.notifier.Notify(ctx, domain.ContentUnavailableNotification())
	}
}

func (b *ContentBinding) applyPush(gen uint64, c domain.Content) {
	if !b.lc.current(gen) {
		return
	}

	b.state.Content = c
	b.state.Err = nil
	b.state.IsLoading = false
	b.errors.reset()
	b.lc.publish(b.copyLocked())
}

func (b *ContentBinding) copyLocked() ContentState {
	s := b.state
	s.Content = b.state.Content.Clone()
	return s
}
