package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// TokenPurpose scopes a token to exactly one operation.
type TokenPurpose string

const (
	// PurposeEmailConfirmation tokens flip the email-confirmed flag once.
	PurposeEmailConfirmation TokenPurpose = "confirm"
	// PurposePasswordReset tokens authorize a single password reset.
	PurposePasswordReset TokenPurpose = "reset"
)

// Purpose token verification failures. Both map to the same client-visible
// error so the caller cannot distinguish a forged token from a stale one.
var (
	ErrTokenInvalid = errors.New("purpose token invalid")
	ErrTokenExpired = errors.New("purpose token expired")
)

// PurposeTokenService issues and verifies short-lived single-use tokens for
// email confirmation and password reset. Verification consumes the token;
// a second verification of the same token fails.
type PurposeTokenService interface {
	// Issue creates an opaque token bound to (identity, purpose) with the
	// purpose's configured lifetime.
	Issue(ctx context.Context, identityID uuid.UUID, purpose TokenPurpose) (string, error)

	// Verify validates and consumes the token, returning the identity it was
	// issued for. The purpose must match the one the token was issued with.
	Verify(ctx context.Context, token string, purpose TokenPurpose) (uuid.UUID, error)
}
