package domain

// Compiled-in defaults
const (
	// ProductionAPIBase is used whenever a production build would otherwise
	// talk to a local API
	ProductionAPIBase = "https://andrian-be-services-v1.vercel.app/api"

	// DevelopmentAPIBase is the default for non-production builds
	DevelopmentAPIBase = "http://localhost:3000/api"

	DefaultDashboardURL           = "http://localhost:5174/dashboard"
	DefaultLoginURL               = "http://localhost:5174/login"
	DefaultNotificationDurationMs = 1500
)

// Settings holds the operational configuration of the site.
// APIBase is always sanitized, or one of the compiled-in defaults.
type Settings struct {
	APIBase                string `json:"apiUrl"`
	DashboardURL           string `json:"cmsUrl"`
	LoginURL               string `json:"loginUrl"`
	NotificationDurationMs int    `json:"notificationDuration"`
}

// SettingsPatch is a partial Settings document, as delivered by the
// settings endpoint or a push update. Nil fields are left untouched.
type SettingsPatch struct {
	APIBase                *string `json:"apiUrl,omitempty"`
	DashboardURL           *string `json:"cmsUrl,omitempty"`
	LoginURL               *string `json:"loginUrl,omitempty"`
	NotificationDurationMs *int    `json:"notificationDuration,omitempty"`
}

// Apply overlays the non-nil fields of the patch onto s
func (p *SettingsPatch) Apply(s Settings) Settings {
	if p == nil {
		return s
	}
	if p.APIBase != nil {
		s.APIBase = *p.APIBase
	}
	if p.DashboardURL != nil {
		s.DashboardURL = *p.DashboardURL
	}
	if p.LoginURL != nil {
		s.LoginURL = *p.LoginURL
	}
	if p.NotificationDurationMs != nil {
		s.NotificationDurationMs = *p.NotificationDurationMs
	}
	return s
}

// IsEmpty reports whether the patch carries no fields
func (p *SettingsPatch) IsEmpty() bool {
	return p == nil || (p.APIBase == nil && p.DashboardURL == nil && p.LoginURL == nil && p.NotificationDurationMs == nil)
}

// PatchFromSettings converts a full document into a patch setting every field
func PatchFromSettings(s Settings) *SettingsPatch {
	return &SettingsPatch{
		APIBase:                &s.APIBase,
		DashboardURL:           &s.DashboardURL,
		LoginURL:               &s.LoginURL,
		NotificationDurationMs: &s.NotificationDurationMs,
	}
}

// Environment is the build/deploy configuration read once at startup
type Environment struct {
	Production bool

	// Overrides; empty means "use the compiled-in default"
	APIBase      string
	DashboardURL string
	LoginURL     string

	// NotificationDurationMs <= 0 means the default
	NotificationDurationMs int
}

// DefaultAPIBase returns the API base used when nothing else is configured
func (e Environment) DefaultAPIBase() string {
	if e.APIBase != "" {
		return e.APIBase
	}
	if e.Production {
		return ProductionAPIBase
	}
	return DevelopmentAPIBase
}

// DefaultSettings returns the compiled-in settings for an environment.
// APIBase is returned raw; the settings resolver sanitizes it.
func DefaultSettings(env Environment) Settings {
	s := Settings{
		APIBase:                env.DefaultAPIBase(),
		DashboardURL:           DefaultDashboardURL,
		LoginURL:               DefaultLoginURL,
		NotificationDurationMs: DefaultNotificationDurationMs,
	}
	if env.DashboardURL != "" {
		s.DashboardURL = env.DashboardURL
	}
	if env.LoginURL != "" {
		s.LoginURL = env.LoginURL
	}
	if env.NotificationDurationMs > 0 {
		s.NotificationDurationMs = env.NotificationDurationMs
	}
	return s
}
