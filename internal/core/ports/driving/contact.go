package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// ContactService relays contact form submissions to the CMS
type ContactService interface {
	Send(ctx context.Context, req domain.ContactRequest) error
}
