package service

import "time"

// TOTPService generates and verifies time-based one-time password secrets.
type TOTPService interface {
	// GenerateSecret returns a fresh base32-encoded shared secret.
	GenerateSecret() (string, error)

	// ProvisioningURI renders the otpauth:// URI for the secret and account,
	// suitable for authenticator apps and QR rendering.
	ProvisioningURI(secret, account string) string

	// Verify checks a candidate code against the secret at the given time,
	// accepting the configured skew window around the current time step.
	Verify(secret, code string, now time.Time) bool
}

// RecoveryCodeGenerator issues batches of single-use backup credentials.
type RecoveryCodeGenerator interface {
	// Generate returns a batch of fresh plaintext recovery codes.
	Generate() ([]string, error)

	// HashCode returns the storage hash for a plaintext code. Comparison is
	// exact and case-sensitive.
	HashCode(code string) string
}
