package runtime

import (
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// State holds the process-wide values shared by the CMS components.
// The API base is written only by the settings resolver and read by the
// loader and the media resolver. Thread-safe for concurrent access.
type State struct {
	mu sync.RWMutex

	config *domain.RuntimeConfig

	apiBase string

	// fallback content layer (prefetched snapshot), nil means compiled-in defaults
	fallbackContent *domain.Content
}

// NewState creates a new State with the given initial API base
func NewState(config *domain.RuntimeConfig, apiBase string) *State {
	if config == nil {
		config = domain.NewRuntimeConfig("local", false)
	}
	return &State{
		config:  config,
		apiBase: apiBase,
	}
}

// Config returns the runtime configuration
func (s *State) Config() *domain.RuntimeConfig {
	return s.config
}

// APIBase returns the current API base URL
func (s *State) APIBase() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiBase
}

// SetAPIBase replaces the API base URL
func (s *State) SetAPIBase(base string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiBase = base
}

// FallbackContent returns a deep copy of the content used when the API
// cannot be reached
func (s *State) FallbackContent() domain.Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fallbackContent == nil {
		return domain.DefaultContent()
	}
	return s.fallbackContent.Clone()
}

// SetFallbackContent installs a snapshot as the fallback layer.
// Passing nil restores the compiled-in defaults.
func (s *State) SetFallbackContent(c *domain.Content) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c == nil {
		s.fallbackContent = nil
		s.config.SetSnapshotLoaded(false)
		return
	}
	cp := c.Clone()
	s.fallbackContent = &cp
	s.config.SetSnapshotLoaded(true)
}
