package driving

import "github.com/custodia-labs/folio/internal/core/domain"

// MediaResolver builds absolute URLs for backend-hosted media
type MediaResolver interface {
	// Resolve returns the URL to render for media, or fallback when media
	// carries no URL
	Resolve(media *domain.MediaReference, fallback string) string
}
