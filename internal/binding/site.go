package binding

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// SiteState is the combined page state
type SiteState struct {
	Content     domain.Content
	Settings    domain.Settings
	IsLoading   bool
	ContentErr  error
	SettingsErr error
}

// SiteBinding loads content and settings together and follows both push
// topics. It is what the page server renders from.
type SiteBinding struct {
	lc       lifecycle[SiteState]
	svc      driving.ContentService
	notifier driven.Notifier
	logger   *slog.Logger

	// guarded by lc.mu
	content       domain.Content
	settings      domain.Settings
	contentReady  bool
	settingsReady bool
	contentErr    error
	settingsErr   error
	errors        errorMemory
}

// NewSiteBinding creates an unmounted binding showing the fallbacks
func NewSiteBinding(cfg Config) *SiteBinding {
	return &SiteBinding{
		svc:      cfg.Service,
		notifier: cfg.Notifier,
		logger:   cfg.logger(),
		content:  cfg.Service.FallbackContent(),
		settings: cfg.Service.DefaultSettings(),
	}
}

// Mount starts both loads and subscribes to push updates
func (b *SiteBinding) Mount(ctx context.Context) {
	gen := b.lc.begin()
	b.contentReady = false
	b.settingsReady = false
	b.lc.publish(b.copyLocked())

	b.lc.run(func() {
		b.applyLoad(ctx, gen, b.svc.LoadAll(ctx))
	})
	b.lc.keep(gen, b.svc.SubscribeContent(func(c domain.Content) {
		b.applyContent(gen, c)
	}))
	b.lc.keep(gen, b.svc.SubscribeSettings(func(s domain.Settings) {
		b.applySettings(gen, s)
	}))
}

// Unmount stops all further state updates
func (b *SiteBinding) Unmount() {
	b.lc.end()
}

// Wait blocks until in-flight loads have finished
func (b *SiteBinding) Wait() {
	b.lc.wait()
}

// State returns a copy of the current state
func (b *SiteBinding) State() SiteState {
	b.lc.mu.Lock()
	defer b.lc.mu.Unlock()
	return b.copyLocked()
}

// OnChange registers fn to receive the state after every applied change.
// fn must not call Mount.
func (b *SiteBinding) OnChange(fn func(SiteState)) func() {
	return b.lc.observe(fn)
}

func (b *SiteBinding) applyLoad(ctx context.Context, gen uint64, res driving.SiteResult) {
	if !b.lc.current(gen) {
		b.logger.Debug("discarding site load after unmount")
		return
	}

	notify := b.errors.observe(res.Content.Err, "failed to load site content")
	b.content = res.Content.Content
	b.contentErr = res.Content.Err
	b.settings = res.Settings.Settings
	b.settingsErr = res.Settings.Err
	b.contentReady = true
	b.settingsReady = true
	duration := b.settings.NotificationDurationMs
	b.lc.publish(b.copyLocked())

	if notify && b.notifier != nil {
		n := domain.ContentUnavailableNotification()
		n.DurationMs = duration
		b.notifier.Notify(ctx, n)
	}
}

func (b *SiteBinding) applyContent(gen uint64, c domain.Content) {
	if !b.lc.current(gen) {
		return
	}

	b.content = c
	b.contentErr = nil
	b.contentReady = true
	b.errors.reset()
	b.lc.publish(b.copyLocked())
}

func (b *SiteBinding) applySettings(gen uint64, s domain.Settings) {
	if !b.lc.current(gen) {
		return
	}

	b.settings = s
	b.settingsErr = nil
	b.settingsReady = true
	b.lc.publish(b.copyLocked())
}

func (b *SiteBinding) copyLocked() SiteState {
	return SiteState{
		Content:     b.content.Clone(),
		Settings:    b.settings,
		IsLoading:   !b.contentReady || !b.settingsReady,
		ContentErr:  b.contentErr,
		SettingsErr: b.settingsErr,
	}
}
