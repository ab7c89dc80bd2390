package models

import "time"

// Session is the authenticated caller. It is produced by the identity layer
// and passed explicitly into every service call.
type Session struct {
	AccountID int       `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
