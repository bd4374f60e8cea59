package auth

import (
	"strings"
	"testing"

	"passport/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecoveryGenerator() *recoveryCodeGenerator {
	cfg := &config.Config{
		TwoFactor: &config.TwoFactorConfig{
			RecoveryCodeCount:  8,
			RecoveryCodeLength: 10,
		},
	}

	return NewRecoveryCodeGenerator(cfg).(*recoveryCodeGenerator)
}

func TestRecoveryCodeGenerator_Generate(t *testing.T) {
	gen := newTestRecoveryGenerator()

	codes, err := gen.Generate()
	require.NoError(t, err)
	require.Len(t, codes, 8)

	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		assert.Len(t, code, 11, "10 characters plus the middle hyphen")
		assert.Equal(t, "-", string(code[5]))
		for _, r := range strings.ReplaceAll(code, "-", "") {
			assert.Contains(t, recoveryCodeAlphabet, string(r))
		}
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 8, "codes within a batch should not repeat")
}

func TestRecoveryCodeGenerator_HashCodeIsExact(t *testing.T) {
	gen := newTestRecoveryGenerator()

	issued := gen.HashCode("ABCDE-FGHJK")

	// Codes match exactly as issued: lowercasing or dropping the hyphen
	// produces a different hash.
	assert.NotEqual(t, issued, gen.HashCode("abcde-fghjk"))
	assert.NotEqual(t, issued, gen.HashCode("ABCDEFGHJK"))
	assert.NotEqual(t, issued, gen.HashCode("ABCDE-FGHJ2"))

	// Only surrounding whitespace is forgiven.
	assert.Equal(t, issued, gen.HashCode("  ABCDE-FGHJK  "))
	assert.Equal(t, issued, gen.HashCode("ABCDE-FGHJK"))
}

func TestFormatRecoveryCode(t *testing.T) {
	assert.Equal(t, "ABCDE-FGHJK", formatRecoveryCode("ABCDEFGHJK"))
	assert.Equal(t, "ABCD-EFGH", formatRecoveryCode("ABCDEFGH"))
	// Short codes stay unformatted.
	assert.Equal(t, "ABCDEFG", formatRecoveryCode("ABCDEFG"))
}
