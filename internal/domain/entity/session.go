package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents an authenticated client for a bounded period.
// The token is opaque and revocable; it carries no claims of its own.
type Session struct {
	Token      string    `json:"-"` // Never serialized into the store value; the token is the key.
	IdentityID uuid.UUID `json:"identityId"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Persistent bool      `json:"persistent"` // "remember me": survives client restarts.
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
