package service

import (
	"context"

	"passport/internal/domain/entity"
)

// OAuthUser represents user information returned by an external provider.
type OAuthUser struct {
	ID            string              // Provider-specific subject key (e.g., Google's 'sub' claim)
	Email         string              // User's email address
	Name          string              // User's display name
	Provider      entity.ProviderType // The OAuth provider
	Picture       string              // URL to the user's profile picture
	EmailVerified bool                // Whether the provider vouches for the email
}

// OAuthAuthService drives the authorization-code flow against an external provider.
type OAuthAuthService interface {
	// BuildAuthorizationURL returns the provider URL the user agent is
	// redirected to, carrying the opaque state parameter.
	BuildAuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for the provider's view of
	// the user. The call is bounded by the context deadline.
	ExchangeCode(ctx context.Context, code string) (*OAuthUser, error)

	// Provider returns which provider this service talks to.
	Provider() entity.ProviderType
}

// OAuthStateStore persists the transient state of an in-flight external login
// (the CSRF state and the sanitized return destination). Records are one-shot:
// Consume removes the record whether the flow ultimately succeeds or fails, so
// no half-authenticated marker outlives the callback.
type OAuthStateStore interface {
	// Save stores the return destination under a fresh state value.
	Save(ctx context.Context, state, returnURL string) error

	// Consume retrieves and deletes the record, returning the stored return
	// destination. A missing or expired state reports ok=false.
	Consume(ctx context.Context, state string) (returnURL string, ok bool, err error)
}
