// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Claim types carried on an Identity. The claim set is deliberately small and
// typed; the claim table is the open extension point for provider-supplied
// profile data.
const (
	ClaimTypePicture = "picture"
)

// Identity is the core entity in the system, representing a registered account.
// It owns the password credential, the email confirmation state and the
// failed-login/lockout counters.
type Identity struct {
	ID             uuid.UUID // The unique identifier for this account.
	Email          string    // The login identifier, stored lowercased for case-insensitive lookup.
	PasswordHash   string    // bcrypt hash of the password; empty for external-only accounts.
	EmailConfirmed bool      // Set once a confirmation token has been consumed, or implicitly by a trusted provider.

	FailedLoginAttempts int        // Consecutive failed password attempts inside the lockout window.
	LastFailedLoginAt   *time.Time // Timestamp of the most recent failed attempt.
	LockoutUntil        *time.Time // Non-nil while the account is locked out.

	Claims []Claim // Profile claims attached to this identity (e.g. picture).

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Claim is a single key/value attribute attached to an Identity.
type Claim struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	Type       string
	Value      string
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLockedOut reports whether the identity is locked out at the given time.
func (i *Identity) IsLockedOut(now time.Time) bool {
	return i.LockoutUntil != nil && now.Before(*i.LockoutUntil)
}

// ClaimValue returns the value of the first claim with the given type,
// or an empty string when the claim is absent.
func (i *Identity) ClaimValue(claimType string) string {
	for _, claim := range i.Claims {
		if claim.Type == claimType {
			return claim.Value
		}
	}

	return ""
}
