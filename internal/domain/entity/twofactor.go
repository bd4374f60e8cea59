package entity

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorState describes where a credential sits in its lifecycle.
type TwoFactorState string

const (
	// TwoFactorDisabled means no shared secret exists.
	TwoFactorDisabled TwoFactorState = "disabled"
	// TwoFactorSetupPending means a secret was generated but never verified.
	TwoFactorSetupPending TwoFactorState = "setup_pending"
	// TwoFactorEnabled means the secret was verified and codes are required at login.
	TwoFactorEnabled TwoFactorState = "enabled"
)

// TwoFactorCredential holds the TOTP shared secret for exactly one Identity.
// The secret exists from the moment setup begins; Enabled flips only after the
// owner has proven possession with a valid code.
type TwoFactorCredential struct {
	IdentityID uuid.UUID
	Secret     string // Base32-encoded shared secret, empty when disabled.
	Enabled    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// State derives the lifecycle state from the stored fields.
func (c *TwoFactorCredential) State() TwoFactorState {
	switch {
	case c == nil || c.Secret == "":
		return TwoFactorDisabled
	case !c.Enabled:
		return TwoFactorSetupPending
	default:
		return TwoFactorEnabled
	}
}

// RecoveryCode is a single-use backup credential. Only the SHA-256 hash of the
// code is stored; the plaintext is shown to the owner exactly once.
type RecoveryCode struct {
	ID         uuid.UUID
	IdentityID uuid.UUID
	CodeHash   string
	CreatedAt  time.Time
}
