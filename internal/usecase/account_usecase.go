package usecase

import (
	"context"

	"github.com/google/uuid"
)

// RegisterInput carries a new account registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordInput carries a password reset submission.
type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	ResetCode   string `json:"resetCode" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UserInfo is the session-info projection served to clients.
type UserInfo struct {
	Email            string  `json:"email"`
	IsEmailConfirmed bool    `json:"isEmailConfirmed"`
	Picture          *string `json:"picture,omitempty"`
}

// AccountUsecase owns registration, email confirmation and password recovery.
type AccountUsecase interface {
	// Register creates a new unconfirmed identity and triggers the
	// confirmation mail.
	Register(ctx context.Context, input *RegisterInput) (*UserInfo, error)

	// ConfirmEmail consumes a confirmation token and flips the identity's
	// email-confirmed flag exactly once.
	ConfirmEmail(ctx context.Context, identityID uuid.UUID, code string) error

	// ResendConfirmation re-mails the confirmation link. The response is
	// uniform whether or not the email is registered.
	ResendConfirmation(ctx context.Context, email string) error

	// ForgotPassword triggers the reset mail for existing confirmed accounts.
	// It always succeeds from the caller's perspective.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and replaces the password.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error

	// GetInfo returns the user-info projection for an authenticated identity.
	GetInfo(ctx context.Context, identityID uuid.UUID) (*UserInfo, error)
}
