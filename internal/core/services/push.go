package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure pushService implements PushService
var _ driving.PushService = (*pushService)(nil)

// pushService routes dashboard updates to the event bus, through the relay
// when several instances serve the site
type pushService struct {
	content driving.ContentService
	tokens  driven.PushTokenAdapter
	relay   driven.PushRelay
	logger  *slog.Logger
}

// PushServiceConfig holds configuration for the push service
type PushServiceConfig struct {
	Content driving.ContentService
	Tokens  driven.PushTokenAdapter
	Relay   driven.PushRelay // Optional: nil publishes to the local bus only
	Logger  *slog.Logger
}

// NewPushService creates a new PushService
func NewPushService(cfg PushServiceConfig) driving.PushService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &pushService{
		content: cfg.Content,
		tokens:  cfg.Tokens,
		relay:   cfg.Relay,
		logger:  logger,
	}
}

// PushContent publishes a content update
func (s *pushService) PushContent(ctx context.Context, content domain.Content) error {
	if content.IsEmpty() {
		return domain.ErrInvalidInput
	}
	if s.relay == nil {
		s.content.PublishContent(content)
		return nil
	}
	return s.publish(ctx, domain.TopicContentUpdated, content)
}

// PushSettings publishes a settings update
func (s *pushService) PushSettings(ctx context.Context, patch *domain.SettingsPatch) error {
	if patch.IsEmpty() {
		return domain.ErrInvalidInput
	}
	if s.relay == nil {
		s.content.PublishSettings(patch)
		return nil
	}
	return s.publish(ctx, domain.TopicSettingsUpdated, patch)
}

// ValidateToken checks a push token and its scope
func (s *pushService) ValidateToken(ctx context.Context, token string) (*domain.PushClaims, error) {
	if s.tokens == nil || token == "" {
		return nil, domain.ErrUnauthorized
	}

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if !claims.CanPush() {
		return nil, domain.ErrForbidden
	}
	return claims, nil
}

// Relay forwards relayed updates to the local bus until ctx is done
func (s *pushService) Relay(ctx context.Context) error {
	if s.relay == nil {
		return nil
	}
	return s.relay.Listen(ctx, s.deliver)
}

func (s *pushService) publish(ctx context.Context, topic domain.Topic, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	if err := s.relay.Publish(ctx, topic, data); err != nil {
		return fmt.Errorf("relay %s: %w", topic, err)
	}
	return nil
}

func (s *pushService) deliver(topic domain.Topic, data []byte) {
	switch topic {
	case domain.TopicContentUpdated:
		var content domain.Content
		if err := json.Unmarshal(data, &content); err != nil {
			s.logger.Warn("dropping malformed relayed content", "error", err)
			return
		}
		if content.IsEmpty() {
			s.logger.Warn("dropping empty relayed content")
			return
		}
		s.content.PublishContent(content)
	case domain.TopicSettingsUpdated:
		var patch domain.SettingsPatch
		if err := json.Unmarshal(data, &patch); err != nil {
			s.logger.Warn("dropping malformed relayed settings", "error", err)
			return
		}
		s.content.PublishSettings(&patch)
	default:
		s.logger.Warn("dropping relayed message on unknown topic", "topic", topic)
	}
}
