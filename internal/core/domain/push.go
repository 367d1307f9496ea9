package domain

import "time"

// PushScope is the claim scope required to push updates
const PushScope = "push"

// PushClaims identifies the authoring surface allowed to push updates
type PushClaims struct {
	Subject   string
	Scope     string
	TokenID   string
	IssuedAt  int64
	ExpiresAt int64
}

// CanPush returns true if the claims grant push access
func (c *PushClaims) CanPush() bool {
	return c != nil && c.Scope == PushScope
}

// IsExpired checks the expiry against now
func (c *PushClaims) IsExpired(now time.Time) bool {
	return c.ExpiresAt != 0 && now.Unix() >= c.ExpiresAt
}
