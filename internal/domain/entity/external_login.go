package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProviderType identifies an external authentication provider.
type ProviderType string

const (
	// ProviderTypeGoogle is the Google OAuth provider.
	ProviderTypeGoogle ProviderType = "google"
)

// ExternalLogin binds a third-party identity to a local Identity.
// At most one binding exists per (provider, provider key) pair, while one
// Identity may hold bindings from several providers.
type ExternalLogin struct {
	ID          uuid.UUID
	IdentityID  uuid.UUID    // The local account this binding belongs to.
	Provider    ProviderType // e.g. "google".
	ProviderKey string       // The provider's stable subject key (Google's 'sub' claim).
	CreatedAt   time.Time
}
