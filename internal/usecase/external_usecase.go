package usecase

import (
	"context"

	"github.com/pkg/errors"

	"passport/internal/domain/entity"
)

// Callback failure reasons. The handler maps these onto the login page's
// error query parameter instead of surfacing an API error envelope.
var (
	// ErrExternalStateInvalid means the state parameter was missing, expired
	// or already consumed.
	ErrExternalStateInvalid = errors.New("external login state invalid")

	// ErrExternalNoEmail means the provider returned no verified email, so
	// there is nothing to bind the identity to.
	ErrExternalNoEmail = errors.New("external provider returned no verified email")

	// ErrExternalCreateFailed means provisioning the local identity for a
	// first-time external login failed.
	ErrExternalCreateFailed = errors.New("external identity provisioning failed")
)

// ChallengeOutput is the redirect target for starting an external login.
type ChallengeOutput struct {
	AuthorizationURL string
}

// CallbackOutput is returned when an external callback authenticates.
type CallbackOutput struct {
	Session   *entity.Session
	Identity  *entity.Identity
	ReturnURL string
}

// ExternalLoginUsecase drives login through an external OAuth provider:
// the outbound challenge redirect and the inbound callback that binds the
// provider identity to a local one and issues a session.
type ExternalLoginUsecase interface {
	// Challenge stores the sanitized return destination under a fresh state
	// and returns the provider authorization URL to redirect to.
	Challenge(ctx context.Context, returnURL string) (*ChallengeOutput, error)

	// Callback consumes the state, exchanges the authorization code and
	// signs the user in, provisioning or linking the local identity as
	// needed. The state is consumed even when the flow fails.
	Callback(ctx context.Context, state, code string) (*CallbackOutput, error)
}
