package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PushService accepts push updates from the authoring dashboard
type PushService interface {
	PushContent(ctx context.Context, content domain.Content) error
	PushSettings(ctx context.Context, patch *domain.SettingsPatch) error

	// ValidateToken checks a push token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.PushClaims, error)

	// Relay forwards updates published by other instances to the local bus.
	// It blocks until ctx is done; without a relay it returns immediately.
	Relay(ctx context.Context) error
}
