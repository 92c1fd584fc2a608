package models

import (
	"time"

	id "civreg/pkg/domain"
)

// Session backs an issued token. Revoking the session invalidates every
// token that references it, regardless of JWT expiry.
type Session struct {
	ID         id.SessionID
	UserID     id.UserID
	Role       Role
	DeviceName string
	ClientIP   string
	UserAgent  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

// IsActive reports whether the session can still authenticate requests.
func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Revoke marks the session dead. Idempotent.
func (s *Session) Revoke(now time.Time) {
	if s.RevokedAt == nil {
		s.RevokedAt = &now
	}
}
