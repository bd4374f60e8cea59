package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"passport/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher(policy *config.PasswordStrengthConfig) *bcryptHasher {
	cfg := &config.Config{
		Auth:             &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: policy,
	}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := newTestHasher(nil)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, hasher.Check("correct horse battery staple", hash))
	assert.False(t, hasher.Check("wrong password", hash))
	assert.False(t, hasher.Check("correct horse battery staple", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := newTestHasher(nil)

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		policy   *config.PasswordStrengthConfig
		password string
		wantErr  bool
	}{
		{
			name:     "default policy accepts eight characters",
			policy:   nil,
			password: "12345678",
			wantErr:  false,
		},
		{
			name:     "default policy rejects short password",
			policy:   nil,
			password: "1234567",
			wantErr:  true,
		},
		{
			name:     "max length enforced",
			policy:   &config.PasswordStrengthConfig{MinLength: 4, MaxLength: 8},
			password: "123456789",
			wantErr:  true,
		},
		{
			name:     "uppercase required",
			policy:   &config.PasswordStrengthConfig{MinLength: 4, RequireUppercase: true},
			password: "lowercase1!",
			wantErr:  true,
		},
		{
			name:     "lowercase required",
			policy:   &config.PasswordStrengthConfig{MinLength: 4, RequireLowercase: true},
			password: "UPPERCASE1!",
			wantErr:  true,
		},
		{
			name:     "number required",
			policy:   &config.PasswordStrengthConfig{MinLength: 4, RequireNumbers: true},
			password: "NoDigitsHere!",
			wantErr:  true,
		},
		{
			name:     "special character required",
			policy:   &config.PasswordStrengthConfig{MinLength: 4, RequireSpecial: true},
			password: "NoSpecials123",
			wantErr:  true,
		},
		{
			name: "all requirements satisfied",
			policy: &config.PasswordStrengthConfig{
				MinLength:        8,
				RequireUppercase: true,
				RequireLowercase: true,
				RequireNumbers:   true,
				RequireSpecial:   true,
			},
			password: "Str0ng!Passw0rd",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasher := newTestHasher(tt.policy)

			err := hasher.ValidatePasswordStrength(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
