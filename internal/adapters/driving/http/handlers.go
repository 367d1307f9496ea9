package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/folio/internal/binding"
	"github.com/custodia-labs/folio/internal/core/domain"
)

const (
	themeCookie = "theme"
	maxBodySize = 1 << 20
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// SiteResponse is the JSON view of the page state
type SiteResponse struct {
	Content       domain.Content  `json:"content"`
	Settings      domain.Settings `json:"settings"`
	IsLoading     bool            `json:"isLoading"`
	ContentError  string          `json:"contentError,omitempty"`
	SettingsError string          `json:"settingsError,omitempty"`
}

func newSiteResponse(state binding.SiteState) SiteResponse {
	resp := SiteResponse{
		Content:   state.Content,
		Settings:  state.Settings,
		IsLoading: state.IsLoading,
	}
	if state.ContentErr != nil {
		resp.ContentError = state.ContentErr.Error()
	}
	if state.SettingsErr != nil {
		resp.SettingsError = state.SettingsErr.Error()
	}
	return resp
}

// ThemeRequest is the body of PUT /api/v1/preferences/theme
type ThemeRequest struct {
	Theme domain.Theme `json:"theme"`
}

// MediaResponse is the body of GET /api/v1/media
type MediaResponse struct {
	URL string `json:"url"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady reports not ready while Redis is configured but unreachable
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "component", "redis", "error", err)
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Pages

// handlePage renders the site. Once loading has finished with a settings
// failure the visitor is sent to the service-down page instead.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	state := s.site.State()
	if !state.IsLoading && state.SettingsErr != nil {
		target := "/service-down?reason=" + url.QueryEscape(state.SettingsErr.Error())
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	var buf bytes.Buffer
	err := s.renderer.page(&buf, pageData{
		Content:  state.Content,
		Settings: state.Settings,
		Theme:    themeFromRequest(r),
		Loading:  state.IsLoading,
		Degraded: state.ContentErr != nil,
	})
	if err != nil {
		s.logger.Error("failed to render page", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleServiceDown(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	if reason == "" {
		reason = DefaultServiceDownReason
	}

	var buf bytes.Buffer
	if err := s.renderer.serviceDown(&buf, reason); err != nil {
		s.logger.Error("failed to render service-down page", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = buf.WriteTo(w)
}

// Site data

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSiteResponse(s.site.State()))
}

// handleResolveMedia resolves ?url= against the current API origin,
// falling back to ?fallback= when url is empty
func (s *Server) handleResolveMedia(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var media *domain.MediaReference
	if raw := q.Get("url"); raw != "" {
		media = &domain.MediaReference{URL: raw}
	}
	writeJSON(w, http.StatusOK, MediaResponse{URL: s.renderer.resolveMedia(media, q.Get("fallback"))})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.contactService == nil {
		writeError(w, http.StatusServiceUnavailable, "contact form is not configured")
		return
	}

	form := isFormPost(r)
	var req domain.ContactRequest
	if form {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		req = domain.ContactRequest{
			Name:    r.PostForm.Get("name"),
			Email:   r.PostForm.Get("email"),
			Message: r.PostForm.Get("message"),
		}
	} else if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.contactService.Send(r.Context(), req); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "name, a valid email and message are required")
			return
		}
		s.logger.Warn("contact relay failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if form {
		http.Redirect(w, r, "/?contact=sent#contact", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "sent"})
}

// isFormPost reports whether the body is a plain HTML form submission
func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// Theme preference

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ThemeRequest{Theme: themeFromRequest(r)})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Theme.IsValid() {
		writeError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(req.Theme),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, req)
}

// themeFromRequest reads the theme cookie, defaulting to light
func themeFromRequest(r *http.Request) domain.Theme {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return domain.ThemeLight
	}
	theme := domain.Theme(c.Value)
	if !theme.IsValid() {
		return domain.ThemeLight
	}
	return theme
}

// Live stream

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.live.serve(w, r, s.site.State())
}

// Dashboard push

func (s *Server) handlePushContent(w http.ResponseWriter, r *http.Request) {
	var content *domain.Content
	if err := decodeBody(w, r, &content); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if content == nil {
		s.writePushError(w, r, domain.ErrInvalidInput)
		return
	}

	if err := s.pushService.PushContent(r.Context(), *content); err != nil {
		s.writePushError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

func (s *Server) handlePushSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.pushService.PushSettings(r.Context(), &patch); err != nil {
		s.writePushError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

func (s *Server) writePushError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "push payload is empty")
		return
	}
	subject := ""
	if claims := GetPushClaims(r.Context()); claims != nil {
		subject = claims.Subject
	}
	s.logger.Error("push failed", "subject", subject, "error", err)
	writeError(w, http.StatusInternalServerError, "push failed")
}

// Helper functions

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
