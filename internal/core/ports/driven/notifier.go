package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// Notifier delivers user-visible notifications (toasts)
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}
