package service

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by Validate when no live session matches the token.
var ErrSessionNotFound = errors.New("session not found")

// SessionIssuer converts a successful authentication into a persisted,
// revocable session and exposes validation. Tokens are opaque; the issuer
// exclusively owns session records.
type SessionIssuer interface {
	// Issue mints a fresh session for the identity. A persistent session gets
	// the longer "remember me" lifetime. Issuing also clears any transient
	// external-authentication marker left for this flow.
	Issue(ctx context.Context, identityID uuid.UUID, persistent bool) (*entity.Session, error)

	// Validate resolves a token to its session, or ErrSessionNotFound when
	// the token is unknown, revoked or expired.
	Validate(ctx context.Context, token string) (*entity.Session, error)

	// Revoke invalidates the token immediately. Revoking an unknown token is
	// a no-op so logout stays idempotent.
	Revoke(ctx context.Context, token string) error
}
