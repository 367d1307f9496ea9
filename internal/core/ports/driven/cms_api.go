package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// CMSAPI is the remote content API.
// Every call takes the API base explicitly so the caller decides which
// origin is current.
type CMSAPI interface {
	// FetchContent retrieves GET {base}/content
	FetchContent(ctx context.Context, base string) (*domain.Content, error)

	// FetchSettings retrieves GET {base}/settings as a partial document
	FetchSettings(ctx context.Context, base string) (*domain.SettingsPatch, error)

	// SendContactMessage posts a message to {base}/contact/messages
	SendContactMessage(ctx context.Context, base string, msg domain.ContactMessage) error
}
