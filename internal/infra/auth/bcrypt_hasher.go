// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"passport/config"
	"passport/internal/domain/service"

	"github.com/pkg/errors"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy *config.PasswordStrengthConfig
}

// NewBcryptHasher is the constructor for bcryptHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg.Auth != nil && cfg.Auth.BcryptCost > 0 {
		cost = cfg.Auth.BcryptCost
	}

	policy := cfg.PasswordStrength
	if policy == nil {
		policy = &config.PasswordStrengthConfig{MinLength: 8}
	}

	return &bcryptHasher{cost: cost, policy: policy}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	// err is nil if the password and hash match.
	return err == nil
}

// ValidatePasswordStrength verifies the plaintext meets the configured policy.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if h.policy.MinLength > 0 && len(password) < h.policy.MinLength {
		return errors.Errorf("password must be at least %d characters", h.policy.MinLength)
	}
	if h.policy.MaxLength > 0 && len(password) > h.policy.MaxLength {
		return errors.Errorf("password must be at most %d characters", h.policy.MaxLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if h.policy.RequireUppercase && !hasUpper {
		return errors.New("password must contain an uppercase letter")
	}
	if h.policy.RequireLowercase && !hasLower {
		return errors.New("password must contain a lowercase letter")
	}
	if h.policy.RequireNumbers && !hasNumber {
		return errors.New("password must contain a number")
	}
	if h.policy.RequireSpecial && !hasSpecial {
		return errors.New("password must contain a special character")
	}

	return nil
}
