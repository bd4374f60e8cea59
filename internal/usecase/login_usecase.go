// Package usecase defines the application's business interfaces and the
// input/output models they exchange with the delivery layer.
package usecase

import (
	"context"

	"passport/internal/domain/entity"
)

// LoginInput carries the credentials for a password login attempt.
type LoginInput struct {
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"required"`
	TwoFactorCode         string `json:"twoFactorCode"`
	TwoFactorRecoveryCode string `json:"twoFactorRecoveryCode"`
	RememberMe            bool   `json:"rememberMe"`
}

// LoginOutput is returned on a successful login.
type LoginOutput struct {
	Session  *entity.Session
	Identity *entity.Identity
}

// LoginUsecase is the top-level entry point for the password login flow:
// credential check, lockout tracking, optional second factor, session issuance.
type LoginUsecase interface {
	// Login authenticates the identity and issues exactly one session on
	// success. Failures surface as INVALID_CREDENTIALS, LOCKED_OUT,
	// REQUIRES_TWO_FACTOR or INVALID_TWO_FACTOR_CODE.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Logout revokes the session token. Unknown tokens are ignored so the
	// operation stays idempotent.
	Logout(ctx context.Context, token string) error
}
