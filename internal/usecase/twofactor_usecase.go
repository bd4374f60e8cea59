package usecase

import (
	"context"

	"github.com/google/uuid"

	"passport/internal/domain/entity"
)

// TwoFactorStatus summarizes an identity's second-factor configuration.
type TwoFactorStatus struct {
	State             entity.TwoFactorState `json:"state"`
	SharedKey         string                `json:"sharedKey,omitempty"`
	ProvisioningURI   string                `json:"provisioningUri,omitempty"`
	RecoveryCodesLeft int                   `json:"recoveryCodesLeft"`
	RecoveryCodes     []string              `json:"recoveryCodes,omitempty"`
}

// TwoFactorUsecase manages the TOTP second factor and its recovery codes.
type TwoFactorUsecase interface {
	// Status reports the current second-factor state. While setup is pending
	// the shared key and provisioning URI are included so the client can
	// render the enrollment screen again.
	Status(ctx context.Context, identityID uuid.UUID) (*TwoFactorStatus, error)

	// BeginSetup creates (or returns the existing) pending shared key.
	// Calling it again before enabling returns the same key. It fails once
	// the second factor is already enabled.
	BeginSetup(ctx context.Context, identityID uuid.UUID) (*TwoFactorStatus, error)

	// Enable verifies a TOTP code against the pending shared key and turns
	// the second factor on. The returned status carries the freshly generated
	// recovery codes; they are shown exactly once.
	Enable(ctx context.Context, identityID uuid.UUID, code string) (*TwoFactorStatus, error)

	// Disable turns the second factor off, discarding the shared key and all
	// recovery codes. Disabling an already-disabled factor is a no-op.
	Disable(ctx context.Context, identityID uuid.UUID) error

	// ResetSharedKey discards the shared key and returns the identity to the
	// setup-pending path with a fresh one. Repeated calls while setup is
	// pending mint another key; it fails only while the factor is disabled.
	ResetSharedKey(ctx context.Context, identityID uuid.UUID) (*TwoFactorStatus, error)

	// RegenerateRecoveryCodes replaces all recovery codes with a new batch.
	// Requires the factor to be enabled.
	RegenerateRecoveryCodes(ctx context.Context, identityID uuid.UUID) (*TwoFactorStatus, error)

	// ProvisioningQR renders the pending or enabled shared key's otpauth URI
	// as a PNG for enrollment.
	ProvisioningQR(ctx context.Context, identityID uuid.UUID) ([]byte, error)
}
