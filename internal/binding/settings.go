package binding

import (
	"context"
	"log/slog"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// SettingsState is what a SettingsBinding exposes.
// LastErrorMessage is the message of the error currently remembered.
type SettingsState struct {
	Settings         domain.Settings
	IsLoading        bool
	Err              error
	LastErrorMessage string
}

// SettingsBinding keeps the effective settings current
type SettingsBinding struct {
	lc     lifecycle[SettingsState]
	svc    driving.ContentService
	logger *slog.Logger

	// guarded by lc.mu
	state  SettingsState
	errors errorMemory
}

// NewSettingsBinding creates an unmounted binding showing the defaults
func NewSettingsBinding(cfg Config) *SettingsBinding {
	return &SettingsBinding{
		svc:    cfg.Service,
		logger: cfg.logger(),
		state: SettingsState{
			Settings:  cfg.Service.DefaultSettings(),
			IsLoading: true,
		},
	}
}

// Mount starts the settings load and subscribes to push updates
func (b *SettingsBinding) Mount(ctx context.Context) {
	gen := b.lc.begin()
	b.state.IsLoading = true
	b.lc.publish(b.state)

	b.lc.run(func() {
		b.applyLoad(gen, b.svc.LoadSettings(ctx))
	})
	b.lc.keep(gen, b.svc.SubscribeSettings(func(s domain.Settings) {
		b.applyPush(gen, s)
	}))
}

// Unmount stops all further state updates
func (b *SettingsBinding) Unmount() {
	b.lc.end()
}

// Wait blocks until in-flight loads have finished
func (b *SettingsBinding) Wait() {
	b.lc.wait()
}

// State returns a copy of the current state
func (b *SettingsBinding) State() SettingsState {
	b.lc.mu.Lock()
	defer b.lc.mu.Unlock()
	return b.state
}

// OnChange registers fn to receive the state after every applied change.
// fn must not call Mount.
func (b *SettingsBinding) OnChange(fn func(SettingsState)) func() {
	return b.lc.observe(fn)
}

func (b *SettingsBinding) applyLoad(gen uint64, res driving.SettingsResult) {
	if !b.lc.current(gen) {
		b.logger.Debug("discarding settings load after unmount")
		return
	}

	b.state.Settings = res.Settings
	b.state.Err = res.Err
	b.state.IsLoading = false
	b.errors.observe(res.Err, "failed to load settings")
	b.state.LastErrorMessage = b.errors.message()
	b.lc.publish(b.state)
}

func (b *SettingsBinding) applyPush(gen uint64, s domain.Settings) {
	if !b.lc.current(gen) {
		return
	}

	b.state.Settings = s
	b.state.Err = nil
	b.state.IsLoading = false
	b.errors.reset()
	b.state.LastErrorMessage = ""
	b.lc.publish(b.state)
}
