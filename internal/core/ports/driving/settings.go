package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// SettingsResolver turns partial settings into the effective document and
// owns writes to the shared API base
type SettingsResolver interface {
	// Merge overlays patch on the defaults, sanitizes the API base and
	// publishes it as the current base
	Merge(patch *domain.SettingsPatch) domain.Settings

	// Defaults resolves the defaults without touching shared state
	Defaults() domain.Settings

	// APIBase returns the current shared API base
	APIBase() string
}
