package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTwoFactorNotFound is returned when an identity has no two-factor credential.
var ErrTwoFactorNotFound = errors.New("two-factor credential not found")

// TwoFactorRepository defines the operations for TOTP credentials and recovery codes.
type TwoFactorRepository interface {
	// FindCredential retrieves the credential owned by an identity.
	FindCredential(ctx context.Context, identityID uuid.UUID) (*entity.TwoFactorCredential, error)

	// SaveCredential inserts or updates the identity's credential.
	SaveCredential(ctx context.Context, credential *entity.TwoFactorCredential) error

	// DeleteCredential removes the credential. Deleting a missing credential
	// is not an error, which keeps disable idempotent.
	DeleteCredential(ctx context.Context, identityID uuid.UUID) error

	// ReplaceRecoveryCodes atomically swaps the identity's recovery code set
	// for a new batch, invalidating every previously issued code.
	ReplaceRecoveryCodes(ctx context.Context, identityID uuid.UUID, codes []*entity.RecoveryCode) error

	// ConsumeRecoveryCode deletes the code with the given hash. It returns
	// true exactly once per code, even under concurrent attempts.
	ConsumeRecoveryCode(ctx context.Context, identityID uuid.UUID, codeHash string) (bool, error)

	// CountRecoveryCodes returns how many unused codes remain.
	CountRecoveryCodes(ctx context.Context, identityID uuid.UUID) (int, error)

	// DeleteRecoveryCodes removes every unused code for the identity.
	DeleteRecoveryCodes(ctx context.Context, identityID uuid.UUID) error
}
