package services

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/runtime"
)

// Ensure MediaResolver implements driving.MediaResolver
var _ driving.MediaResolver = (*MediaResolver)(nil)

// MediaResolver turns relative media URLs into absolute ones against the
// current API origin
type MediaResolver struct {
	state  *runtime.State
	logger *slog.Logger
}

// NewMediaResolver creates a new MediaResolver
func NewMediaResolver(state *runtime.State, logger *slog.Logger) *MediaResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaResolver{
		state:  state,
		logger: logger,
	}
}

// Resolve returns the URL to render for media.
// An empty string means there is nothing to render.
func (r *MediaResolver) Resolve(media *domain.MediaReference, fallback string) string {
	fallback = strings.TrimSpace(fallback)
	if media == nil || strings.TrimSpace(media.URL) == "" {
		return fallback
	}

	raw := strings.TrimSpace(media.URL)
	if isAbsoluteMediaURL(raw) {
		return raw
	}

	path := normalizeMediaPath(raw)
	base := strings.TrimRight(r.state.APIBase(), "/")
	// the API is mounted under /api while uploads are served from the origin
	if strings.HasPrefix(path, "/api/") && strings.HasSuffix(base, "/api") {
		base = strings.TrimSuffix(base, "/api")
	}

	if fallback != "" {
		if fp, ok := r.fallbackPath(fallback); ok && fp == path {
			r.logger.Debug("media matches fallback, using API origin", "path", path)
		}
	}
	return base + path
}

func (r *MediaResolver) fallbackPath(fallback string) (string, bool) {
	if !hasHTTPScheme(fallback) {
		if strings.HasPrefix(strings.ToLower(fallback), "data:") {
			return "", false
		}
		return normalizeMediaPath(fallback), true
	}
	u, err := url.Parse(fallback)
	if err != nil {
		r.logger.Warn("invalid fallback media URL", "url", fallback, "error", err)
		return "", false
	}
	return u.Path, true
}

func isAbsoluteMediaURL(s string) bool {
	return hasHTTPScheme(s) || strings.HasPrefix(strings.ToLower(s), "data:")
}

// normalizeMediaPath drops query and fragment and leaves exactly one
// leading slash
func normalizeMediaPath(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return "/" + strings.TrimLeft(raw, "/")
}
