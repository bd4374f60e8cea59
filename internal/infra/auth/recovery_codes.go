package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/pkg/errors"
)

// recoveryCodeAlphabet omits ambiguous characters (0/O, 1/I) so codes survive
// being read aloud or written down.
const recoveryCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// recoveryCodeGenerator implements service.RecoveryCodeGenerator.
// Codes are stored as SHA-256 hashes; the plaintext leaves the process once.
type recoveryCodeGenerator struct {
	count  int
	length int
}

// NewRecoveryCodeGenerator is the constructor for recoveryCodeGenerator.
func NewRecoveryCodeGenerator(cfg *config.Config) service.RecoveryCodeGenerator {
	return &recoveryCodeGenerator{
		count:  cfg.TwoFactor.RecoveryCodeCount,
		length: cfg.TwoFactor.RecoveryCodeLength,
	}
}

// Generate returns a batch of fresh plaintext recovery codes, formatted with a
// hyphen in the middle for readability.
func (g *recoveryCodeGenerator) Generate() ([]string, error) {
	codes := make([]string, 0, g.count)
	for i := 0; i < g.count; i++ {
		code, err := newRecoveryCode(g.length)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate recovery code")
		}
		codes = append(codes, formatRecoveryCode(code))
	}

	return codes, nil
}

// HashCode returns the storage hash for a plaintext code. The code is hashed
// exactly as submitted, minus surrounding whitespace: matching is
// case-sensitive and the hyphen is part of the code.
func (g *recoveryCodeGenerator) HashCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))

	return hex.EncodeToString(sum[:])
}

func newRecoveryCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(recoveryCodeAlphabet))))
		if err != nil {
			return "", err
		}
		b.WriteByte(recoveryCodeAlphabet[n.Int64()])
	}

	return b.String(), nil
}

func formatRecoveryCode(code string) string {
	if len(code) < 8 {
		return code
	}
	mid := len(code) / 2

	return code[:mid] + "-" + code[mid:]
}
