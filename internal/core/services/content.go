package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/runtime"
)

// Ensure ContentService implements driving.ContentService
var _ driving.ContentService = (*ContentService)(nil)

const (
	msgContentLoadFailed  = "failed to load site content"
	msgSettingsLoadFailed = "failed to load settings"
)

// ContentService loads the CMS documents and carries push updates
type ContentService struct {
	api      driven.CMSAPI
	resolver *SettingsResolver
	state    *runtime.State
	bus      driven.EventBus
	logger   *slog.Logger
}

// ContentServiceConfig holds configuration for the content service
type ContentServiceConfig struct {
	API      driven.CMSAPI
	Resolver *SettingsResolver
	State    *runtime.State
	Bus      driven.EventBus // Optional: without a bus, subscriptions never fire
	Logger   *slog.Logger
}

// NewContentService creates a new ContentService
func NewContentService(cfg ContentServiceConfig) *ContentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	state := cfg.State
	if state == nil {
		state = runtime.NewState(nil, "")
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewSettingsResolver(SettingsResolverConfig{State: state, Logger: logger})
	}

	return &ContentService{
		api:      cfg.API,
		resolver: resolver,
		state:    state,
		bus:      cfg.Bus,
		logger:   logger,
	}
}

// LoadContent fetches the content document.
// On failure the result carries a copy of the fallback content.
func (s *ContentService) LoadContent(ctx context.Context) driving.ContentResult {
	base := s.state.APIBase()

	content, err := s.api.FetchContent(ctx, base)
	if err == nil && content == nil {
		err = errors.New(msgContentLoadFailed)
	}
	if err != nil {
		err = loadError(err, msgContentLoadFailed)
		s.logger.Warn("content load failed, using fallback", "api_base", base, "error", err)
		return driving.ContentResult{
			Content: s.state.FallbackContent(),
			Err:     err,
		}
	}

	return driving.ContentResult{Content: *content}
}

// LoadSettings fetches the settings document and merges it.
// On failure the result carries the resolved defaults.
func (s *ContentService) LoadSettings(ctx context.Context) driving.SettingsResult {
	base := s.state.APIBase()

	patch, err := s.api.FetchSettings(ctx, base)
	if err != nil {
		err = loadError(err, msgSettingsLoadFailed)
		s.logger.Warn("settings load failed, using defaults", "api_base", base, "error", err)
		return driving.SettingsResult{
			Settings: s.resolver.Defaults(),
			Err:      err,
		}
	}

	return driving.SettingsResult{Settings: s.resolver.Merge(patch)}
}

// LoadAll runs both loads concurrently
func (s *ContentService) LoadAll(ctx context.Context) driving.SiteResult {
	var result driving.SiteResult
	var g errgroup.Group

	g.Go(func() error {
		result.Content = s.LoadContent(ctx)
		return nil
	})
	g.Go(func() error {
		result.Settings = s.LoadSettings(ctx)
		return nil
	})
	_ = g.Wait()

	return result
}

// FallbackContent returns a copy of the content shown when loading fails
func (s *ContentService) FallbackContent() domain.Content {
	return s.state.FallbackContent()
}

// DefaultSettings returns the resolved defaults
func (s *ContentService) DefaultSettings() domain.Settings {
	return s.resolver.Defaults()
}

// SubscribeContent registers fn for content push updates
func (s *ContentService) SubscribeContent(fn func(domain.Content)) func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.Subscribe(domain.TopicContentUpdated, func(payload any) {
		switch v := payload.(type) {
		case domain.Content:
			fn(v.Clone())
		case *domain.Content:
			if v != nil {
				fn(v.Clone())
			}
		default:
			s.logger.Warn("ignoring content update with unexpected payload", "type", fmt.Sprintf("%T", payload))
		}
	})
}

// SubscribeSettings registers fn for settings push updates.
// Payloads are merged before fn is called.
func (s *ContentService) SubscribeSettings(fn func(domain.Settings)) func() {
	if s.bus == nil {
		return func() {}
	}
	return s.bus.Subscribe(domain.TopicSettingsUpdated, func(payload any) {
		switch v := payload.(type) {
		case *domain.SettingsPatch:
			if v != nil {
				fn(s.resolver.Merge(v))
			}
		case domain.SettingsPatch:
			fn(s.resolver.Merge(&v))
		case domain.Settings:
			fn(s.resolver.Merge(domain.PatchFromSettings(v)))
		default:
			s.logger.Warn("ignoring settings update with unexpected payload", "type", fmt.Sprintf("%T", payload))
		}
	})
}

// PublishContent dispatches a content push update
func (s *ContentService) PublishContent(content domain.Content) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(domain.TopicContentUpdated, content)
}

// PublishSettings dispatches a settings push update
func (s *ContentService) PublishSettings(patch *domain.SettingsPatch) {
	if s.bus == nil || patch == nil {
		return
	}
	s.bus.Publish(domain.TopicSettingsUpdated, patch)
}

// loadError keeps the underlying message, or substitutes a generic one
func loadError(err error, fallback string) error {
	if err.Error() == "" {
		return errors.New(fallback)
	}
	return err
}
