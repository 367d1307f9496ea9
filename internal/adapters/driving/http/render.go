package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultServiceDownReason is shown when /service-down is opened without a reason
const DefaultServiceDownReason = "The CMS API is currently unreachable. Please try again in a few moments."

// renderer owns the page templates and the markdown engine used for the
// free-text sections. Raw HTML inside CMS text is escaped, not rendered.
type renderer struct {
	templates *template.Template
	markdown  goldmark.Markdown
	media     driving.MediaResolver
}

func newRenderer(media driving.MediaResolver) (*renderer, error) {
	r := &renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		media: media,
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"markdown": r.renderMarkdown,
		"media":    r.mediaAttr,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

// renderMarkdown converts CMS text to HTML. On failure the text is shown escaped.
func (r *renderer) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func (r *renderer) resolveMedia(media *domain.MediaReference, fallback string) string {
	if r.media == nil {
		if media == nil || strings.TrimSpace(media.URL) == "" {
			return strings.TrimSpace(fallback)
		}
		return media.URL
	}
	return r.media.Resolve(media, fallback)
}

// mediaAttr is resolveMedia for src and href attributes.
// Inline images are marked safe so html/template keeps the data: scheme;
// everything else still goes through its URL filter.
func (r *renderer) mediaAttr(media *domain.MediaReference, fallback string) any {
	url := r.resolveMedia(media, fallback)
	if isInlineImage(url) {
		return template.URL(url)
	}
	return url
}

func isInlineImage(url string) bool {
	return len(url) > len("data:image/") && strings.EqualFold(url[:len("data:image/")], "data:image/")
}

// pageData is what page.html renders
type pageData struct {
	Content  domain.Content
	Settings domain.Settings
	Theme    domain.Theme
	Loading  bool
	Degraded bool
}

func (r *renderer) page(w io.Writer, data pageData) error {
	return r.templates.ExecuteTemplate(w, "page.html", data)
}

func (r *renderer) serviceDown(w io.Writer, reason string) error {
	return r.templates.ExecuteTemplate(w, "service_down.html", struct{ Reason string }{reason})
}
