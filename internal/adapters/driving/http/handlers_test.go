package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/custodia-labs/folio/internal/binding"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/eventbus"
	"github.com/custodia-labs/folio/internal/runtime"
)

const testAPIBase = "https://cms.example.com/api"

type testEnv struct {
	api    *mocks.MockCMSAPI
	state  *runtime.State
	site   *binding.SiteBinding
	tokens *mocks.MockPushTokenAdapter
	live   *LiveHub
	server *Server
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := mocks.NewMockCMSAPI()
	state := runtime.NewState(nil, "")
	resolver := services.NewSettingsResolver(services.SettingsResolverConfig{
		Environment: domain.Environment{APIBase: testAPIBase},
		State:       state,
	})
	content := services.NewContentService(services.ContentServiceConfig{
		API:      api,
		Resolver: resolver,
		State:    state,
		Bus:      eventbus.New(nil),
	})
	tokens := mocks.NewMockPushTokenAdapter()
	site := binding.NewSiteBinding(binding.Config{Service: content})
	live := NewLiveHub(nil, nil)

	srv, err := NewServer(DefaultConfig(), Services{
		Site:    site,
		Media:   services.NewMediaResolver(state, nil),
		Contact: services.NewContactService(api, state, nil),
		Push:    services.NewPushService(services.PushServiceConfig{Content: content, Tokens: tokens}),
		Live:    live,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		site.Unmount()
		site.Wait()
		live.Close()
	})
	return &testEnv{api: api, state: state, site: site, tokens: tokens, live: live, server: srv}
}

// load mounts the site binding and waits for the initial load
func (e *testEnv) load() {
	e.site.Mount(context.Background())
	e.site.Wait()
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) pushToken(t *testing.T, scope string) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(&domain.PushClaims{Subject: "dashboard", Scope: scope})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestNewServer_RequiresSite(t *testing.T) {
	if _, err := NewServer(DefaultConfig(), Services{}); err == nil {
		t.Error("expected error without a site source")
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path   string
		status int
		key    string
		value  string
	}{
		{"/health", http.StatusOK, "status", "ok"},
		{"/ready", http.StatusOK, "status", "ready"},
		{"/version", http.StatusOK, "version", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			body := decodeJSON[map[string]string](t, rec)
			if body[tt.key] != tt.value {
				t.Errorf("expected %s=%q, got %v", tt.key, tt.value, body)
			}
		})
	}
}

func TestReady_RedisDown(t *testing.T) {
	env := newTestEnv(t)
	env.server.redisClient = stubPinger{err: errors.New("connection refused")}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestPage_WhileLoading(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `aria-busy="true"`) {
		t.Error("expected loading marker before the first load")
	}
	if !strings.Contains(body, "Andrian Kurnia Aji") {
		t.Error("expected fallback content to render")
	}
}

func TestPage_Loaded(t *testing.T) {
	env := newTestEnv(t)
	env.api.Content.Hero.Title = "Live title"
	env.api.Content.About.Description = "Builds **reliable** systems"
	env.api.Content.Hero.Image = &domain.MediaReference{URL: "/api/uploads/hero.png"}
	env.load()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Live title",
		"<strong>reliable</strong>",
		`src="https://cms.example.com/api/uploads/hero.png"`,
		`data-api="https://cms.example.com/api"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "aria-busy") {
		t.Error("page should not be marked busy after loading")
	}
}

func TestPage_InlineImages(t *testing.T) {
	env := newTestEnv(t)
	env.api.Content.Hero.Image = &domain.MediaReference{URL: "data:image/png;base64,AAAA"}
	env.api.Content.About.Image = &domain.MediaReference{URL: "data:text/html;base64,PHNjcmlwdD4="}
	env.load()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `src="data:image/png;base64,AAAA"`) {
		t.Errorf("expected inline hero image to render, got:\n%s", body)
	}
	if strings.Contains(body, "data:text/html") {
		t.Error("non-image data URL must not reach the page")
	}
	if !strings.Contains(body, "#ZgotmplZ") {
		t.Error("expected the non-image data URL to be filtered")
	}
}

func TestIsInlineImage(t *testing.T) {
	tests := []struct {
		url      string
		expected bool
	}{
		{"data:image/png;base64,AAAA", true},
		{"DATA:IMAGE/jpeg;base64,AAAA", true},
		{"data:image/", false},
		{"data:text/html;base64,AAAA", false},
		{"https://cms.example.com/uploads/a.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isInlineImage(tt.url); got != tt.expected {
			t.Errorf("isInlineImage(%q) = %v, want %v", tt.url, got, tt.expected)
		}
	}
}

func TestPage_MarkdownEscapesRawHTML(t *testing.T) {
	env := newTestEnv(t)
	env.api.Content.Contact.Blurb = "Hi <script>alert(1)</script>"
	env.load()

	body := env.do(httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()

	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("raw HTML from the CMS must not be rendered")
	}
}

func TestPage_ContentFailureShowsBanner(t *testing.T) {
	env := newTestEnv(t)
	env.api.SetContentErr(errors.New("content down"))
	env.load()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `role="status"`) {
		t.Error("expected degraded banner")
	}
}

func TestPage_SettingsFailureRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.api.SetSettingsErr(errors.New("settings exploded"))
	env.load()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/service-down" || loc.Query().Get("reason") != "settings exploded" {
		t.Errorf("unexpected redirect %q", rec.Header().Get("Location"))
	}

	// Following the redirect shows the reason
	follow := env.do(httptest.NewRequest(http.MethodGet, loc.String(), nil))
	if follow.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", follow.Code)
	}
	if !strings.Contains(follow.Body.String(), "settings exploded") {
		t.Error("expected reason on the service-down page")
	}
}

func TestPage_SettingsPushClearsRedirect(t *testing.T) {
	env := newTestEnv(t)
	env.api.SetSettingsErr(errors.New("settings exploded"))
	env.load()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/push/settings", strings.NewReader(`{"loginUrl":"https://cms.example.com/login"}`))
	req.Header.Set("Authorization", "Bearer "+env.pushToken(t, domain.PushScope))
	if rec := env.do(req); rec.Code != http.StatusAccepted {
		t.Fatalf("push: expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected page after settings push, got %d", rec.Code)
	}
}

func TestServiceDown(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"default reason", "", DefaultServiceDownReason},
		{"blank reason", "?reason=%20%20", DefaultServiceDownReason},
		{"custom reason is trimmed", "?reason=%20maintenance%20", `<p id="reason">maintenance</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, "/service-down"+tt.query, nil))
			if rec.Code != http.StatusServiceUnavailable {
				t.Errorf("expected 503, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("expected body to contain %q", tt.want)
			}
		})
	}
}

func TestGetSite(t *testing.T) {
	env := newTestEnv(t)
	env.api.SetSettingsErr(errors.New("settings exploded"))
	env.load()

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/site", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	site := decodeJSON[SiteResponse](t, rec)
	if site.IsLoading {
		t.Error("expected loading to be finished")
	}
	if site.SettingsError != "settings exploded" {
		t.Errorf("settingsError = %q", site.SettingsError)
	}
	if site.ContentError != "" {
		t.Errorf("unexpected contentError %q", site.ContentError)
	}
	if site.Settings.APIBase != testAPIBase {
		t.Errorf("settings.apiUrl = %q", site.Settings.APIBase)
	}
}

func TestResolveMedia(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"api upload", "?url=/api/uploads/a.png", "https://cms.example.com/api/uploads/a.png"},
		{"relative upload", "?url=uploads/a.png%3Fv%3D2", "https://cms.example.com/api/uploads/a.png"},
		{"absolute passes through", "?url=https://cdn.example.com/x.png", "https://cdn.example.com/x.png"},
		{"fallback when empty", "?fallback=%20/img/fallback.png%20", "/img/fallback.png"},
		{"nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/media"+tt.query, nil))
			got := decodeJSON[MediaResponse](t, rec)
			if got.URL != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.URL)
			}
		})
	}
}

func TestContact(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		contactErr error
		status     int
		errorText  string
	}{
		{"sent", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`, nil, http.StatusAccepted, ""},
		{"missing fields", `{"name":"Ada"}`, nil, http.StatusBadRequest, "required"},
		{"malformed body", `{`, nil, http.StatusBadRequest, "invalid request body"},
		{"relay failure", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`, errors.New("mailbox full"), http.StatusBadGateway, "mailbox full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.api.ContactErr = tt.contactErr

			rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(tt.body)))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.errorText != "" {
				if got := decodeJSON[ErrorResponse](t, rec).Error; !strings.Contains(got, tt.errorText) {
					t.Errorf("expected error containing %q, got %q", tt.errorText, got)
				}
			}
		})
	}
}

func TestContact_RelaysToCurrentBase(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/contact",
		strings.NewReader(`{"name":" Ada ","email":"ada@example.com","message":"Hello"}`)))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	sent := env.api.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].Subject != "Website contact from Ada" {
		t.Errorf("subject = %q", sent[0].Subject)
	}
}

func TestContact_FormPost(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hi"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := env.do(req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(env.api.SentMessages()) != 1 {
		t.Error("expected the form submission to be relayed")
	}
}

func TestTheme(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/preferences/theme", nil))
	if got := decodeJSON[ThemeRequest](t, rec).Theme; got != domain.ThemeLight {
		t.Errorf("default theme = %q, want light", got)
	}

	rec = env.do(httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"dark"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "theme" || cookies[0].Value != "dark" {
		t.Fatalf("unexpected cookies %v", cookies)
	}

	page := httptest.NewRequest(http.MethodGet, "/", nil)
	page.AddCookie(cookies[0])
	if body := env.do(page).Body.String(); !strings.Contains(body, `class="dark"`) {
		t.Error("expected dark class on the page")
	}

	rec = env.do(httptest.NewRequest(http.MethodPut, "/api/v1/preferences/theme", strings.NewReader(`{"theme":"sepia"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown theme, got %d", rec.Code)
	}
}

func TestThemeFromRequest_IgnoresUnknownCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "neon"})

	if got := themeFromRequest(req); got != domain.ThemeLight {
		t.Errorf("expected light, got %q", got)
	}
}

func TestPush_Auth(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-base64!", http.StatusUnauthorized},
		{"wrong scope", "Bearer " + env.pushToken(t, "read"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/push/content", strings.NewReader(`{}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if rec := env.do(req); rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestPush_Content(t *testing.T) {
	env := newTestEnv(t)
	env.load()

	pushed := domain.DefaultContent()
	pushed.Hero.Title = "Pushed title"
	body, _ := json.Marshal(pushed)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/push/content", strings.NewReader(string(body)))
	req.Header.Set("Authorization", "Bearer "+env.pushToken(t, domain.PushScope))

	rec := env.do(req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := env.site.State().Content.Hero.Title; got != "Pushed title" {
		t.Errorf("site content not updated, hero title %q", got)
	}
}

func TestPush_EmptyContentRejected(t *testing.T) {
	env := newTestEnv(t)
	env.load()
	token := "Bearer " + env.pushToken(t, domain.PushScope)

	for _, body := range []string{`null`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/push/content", strings.NewReader(body))
		req.Header.Set("Authorization", token)

		rec := env.do(req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if got := env.site.State().Content.Hero.Title; got != domain.DefaultContent().Hero.Title {
		t.Errorf("live content replaced, hero title %q", got)
	}
}

func TestPush_SettingsValidation(t *testing.T) {
	env := newTestEnv(t)
	token := "Bearer " + env.pushToken(t, domain.PushScope)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty patch", `{}`, http.StatusBadRequest},
		{"malformed", `{"apiUrl":`, http.StatusBadRequest},
		{"valid", `{"notificationDuration":3000}`, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/push/settings", strings.NewReader(tt.body))
			req.Header.Set("Authorization", token)
			if rec := env.do(req); rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPushRoutesDisabledWithoutService(t *testing.T) {
	env := newTestEnv(t)
	srv, err := NewServer(DefaultConfig(), Services{Site: env.site})
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/push/content", strings.NewReader(`{}`)))

	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected push route to be absent, got %d", rec.Code)
	}
}
