package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ContentResult is the outcome of a content load.
// Content is always usable; Err is set when it came from a fallback.
type ContentResult struct {
	Content domain.Content
	Err     error
}

// SettingsResult is the outcome of a settings load
type SettingsResult struct {
	Settings domain.Settings
	Err      error
}

// SiteResult pairs both loads
type SiteResult struct {
	Content  ContentResult
	Settings SettingsResult
}

// ContentService loads site content and settings and carries push updates.
// Loads never fail: errors travel inside the results.
type ContentService interface {
	LoadContent(ctx context.Context) ContentResult
	LoadSettings(ctx context.Context) SettingsResult

	// LoadAll runs both loads concurrently
	LoadAll(ctx context.Context) SiteResult

	// FallbackContent returns a copy of the content shown before or instead
	// of a successful load
	FallbackContent() domain.Content

	// DefaultSettings returns the resolved defaults
	DefaultSettings() domain.Settings

	// SubscribeContent registers fn for content push updates
	SubscribeContent(fn func(domain.Content)) (unsubscribe func())

	// SubscribeSettings registers fn for settings push updates, already merged
	SubscribeSettings(fn func(domain.Settings)) (unsubscribe func())

	PublishContent(content domain.Content)
	PublishSettings(patch *domain.SettingsPatch)
}
