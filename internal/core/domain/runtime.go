package domain

import "sync"

// RuntimeConfig tracks which optional integrations are active.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	PushBackend string // "redis" or "local"
	Production  bool

	// Dynamic capability flags
	snapshotLoaded bool
	pushEnabled    bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(pushBackend string, production bool) *RuntimeConfig {
	return &RuntimeConfig{
		PushBackend: pushBackend,
		Production:  production,
	}
}

// SnapshotLoaded returns whether a prefetched snapshot backs the fallbacks
func (c *RuntimeConfig) SnapshotLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLoaded
}

// PushEnabled returns whether the dashboard push webhook accepts updates
func (c *RuntimeConfig) PushEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pushEnabled
}

// SetSnapshotLoaded updates the snapshot flag
func (c *RuntimeConfig) SetSnapshotLoaded(loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshotLoaded = loaded
}

// SetPushEnabled updates the push flag
func (c *RuntimeConfig) SetPushEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushEnabled = enabled
}
