package services

import (
	"log/slog"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/runtime"
)

// Ensure SettingsResolver implements driving.SettingsResolver
var _ driving.SettingsResolver = (*SettingsResolver)(nil)

// SettingsResolver computes the effective settings document.
// It is the only writer of the shared API base.
type SettingsResolver struct {
	env    domain.Environment
	state  *runtime.State
	logger *slog.Logger

	mu       sync.RWMutex
	baseline *domain.SettingsPatch
}

// SettingsResolverConfig holds configuration for the resolver
type SettingsResolverConfig struct {
	Environment domain.Environment
	State       *runtime.State
	Logger      *slog.Logger
}

// NewSettingsResolver creates a resolver and seeds the shared API base
// with the resolved defaults
func NewSettingsResolver(cfg SettingsResolverConfig) *SettingsResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := cfg.State
	if state == nil {
		state = runtime.NewState(nil, "")
	}

	r := &SettingsResolver{
		env:    cfg.Environment,
		state:  state,
		logger: logger,
	}
	r.Merge(nil)
	return r
}

// SetBaseline installs a patch (usually the prefetched snapshot) applied
// between the defaults and every merged patch
func (r *SettingsResolver) SetBaseline(patch *domain.SettingsPatch) {
	r.mu.Lock()
	r.baseline = patch
	r.mu.Unlock()
}

// Merge overlays patch on the defaults, resolves the API base and makes it
// the current shared base
func (r *SettingsResolver) Merge(patch *domain.SettingsPatch) domain.Settings {
	s := r.resolve(patch)
	r.state.SetAPIBase(s.APIBase)
	return s
}

// Defaults returns the resolved defaults without touching shared state
func (r *SettingsResolver) Defaults() domain.Settings {
	return r.resolve(nil)
}

// APIBase returns the current shared API base
func (r *SettingsResolver) APIBase() string {
	return r.state.APIBase()
}

func (r *SettingsResolver) resolve(patch *domain.SettingsPatch) domain.Settings {
	r.mu.RLock()
	baseline := r.baseline
	r.mu.RUnlock()

	s := domain.DefaultSettings(r.env)
	s = baseline.Apply(s)
	s = patch.Apply(s)
	s.APIBase = r.resolveBase(s.APIBase)
	if s.NotificationDurationMs <= 0 {
		s.NotificationDurationMs = domain.DefaultNotificationDurationMs
	}
	return s
}

func (r *SettingsResolver) resolveBase(candidate string) string {
	base, ok := sanitizeBaseURL(r.logger, candidate)
	if !ok {
		base = r.defaultBase()
	}

	if r.env.Production && isLocalBase(base) {
		r.logger.Warn("local API base in production, using production default",
			"configured", base,
			"api_base", domain.ProductionAPIBase,
		)
		return domain.ProductionAPIBase
	}
	return base
}

// defaultBase is the sanitized environment default, or the compiled-in one
// when the override itself is malformed
func (r *SettingsResolver) defaultBase() string {
	if base, ok := sanitizeBaseURL(r.logger, r.env.DefaultAPIBase()); ok {
		return base
	}
	if r.env.Production {
		return domain.ProductionAPIBase
	}
	return domain.DevelopmentAPIBase
}
