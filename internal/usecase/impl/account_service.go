package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"passport/config"
	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager     repository.TransactionManager
	identityRepo  repository.IdentityRepository
	hasher        service.PasswordHasher
	purposeTokens service.PurposeTokenService
	notifier      service.Notifier
	publicBaseURL string
	logger        *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	IdentityRepo  repository.IdentityRepository
	Hasher        service.PasswordHasher
	PurposeTokens service.PurposeTokenService
	Notifier      service.Notifier
	Config        *config.Config
	Logger        *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		txManager:     params.TxManager,
		identityRepo:  params.IdentityRepo,
		hasher:        params.Hasher,
		purposeTokens: params.PurposeTokens,
		notifier:      params.Notifier,
		publicBaseURL: params.Config.PublicBaseURL,
		logger:        params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new unconfirmed identity and triggers the confirmation mail.
func (srv *accountService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.UserInfo, error) {
	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordStrength, err.Error())
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash password during registration")
	}

	newIdentity := &entity.Identity{
		Email:        email,
		PasswordHash: hashedPassword,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		_, findErr := identityRepo.FindByEmail(ctx, email)
		if findErr == nil {
			return errors.Wrap(domainerrors.ErrUserAlreadyExists, "email already registered")
		}
		if !errors.Is(findErr, repository.ErrIdentityNotFound) {
			return errors.Wrap(findErr, "failed to check existing identity")
		}

		return identityRepo.Create(ctx, newIdentity)
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.sendConfirmationMail(ctx, newIdentity)

	srv.log(ctx).Info("Registration completed", slog.Any("identityID", newIdentity.ID))

	return userInfoFrom(newIdentity), nil
}

// sendConfirmationMail issues a confirmation token and hands it to the
// notifier. Delivery failures are logged, never surfaced: the registration
// response must not leak whether the mail went out.
func (srv *accountService) sendConfirmationMail(ctx context.Context, identity *entity.Identity) {
	token, err := srv.purposeTokens.Issue(ctx, identity.ID, service.PurposeEmailConfirmation)
	if err != nil {
		srv.log(ctx).Error("Failed to issue confirmation token", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return
	}

	link := fmt.Sprintf("%s/api/auth/confirm-email?userId=%s&code=%s",
		srv.publicBaseURL, identity.ID, url.QueryEscape(token))

	if err := srv.notifier.SendConfirmationLink(ctx, identity, identity.Email, link); err != nil {
		srv.log(ctx).Error("Failed to send confirmation mail", slog.Any("identityID", identity.ID), slog.Any("error", err))
	}
}

// ConfirmEmail consumes a confirmation token and flips the confirmed flag.
func (srv *accountService) ConfirmEmail(ctx context.Context, identityID uuid.UUID, code string) error {
	tokenIdentityID, err := srv.purposeTokens.Verify(ctx, code, service.PurposeEmailConfirmation)
	if err != nil {
		srv.log(ctx).Warn("Email confirmation token rejected", slog.Any("identityID", identityID), slog.Any("error", err))

		return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "confirmation token rejected")
	}

	if tokenIdentityID != identityID {
		srv.log(ctx).Warn("Email confirmation token issued for a different identity", slog.Any("identityID", identityID))

		return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "confirmation token mismatch")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		identity, findErr := identityRepo.FindByID(ctx, identityID)
		if findErr != nil {
			if errors.Is(findErr, repository.ErrIdentityNotFound) {
				return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "identity no longer exists")
			}

			return errors.Wrap(findErr, "failed to load identity for confirmation")
		}

		if identity.EmailConfirmed {
			return nil
		}

		identity.EmailConfirmed = true

		return identityRepo.Update(ctx, identity)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to confirm email", slog.Any("identityID", identityID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute email confirmation transaction")
	}

	srv.log(ctx).Info("Email confirmed", slog.Any("identityID", identityID))

	return nil
}

// ResendConfirmation re-mails the confirmation link. The outcome is identical
// for unknown emails and already-confirmed accounts.
func (srv *accountService) ResendConfirmation(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	identity, err := srv.identityRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		srv.log(ctx).Debug("Resend confirmation for unknown email", slog.String("email", email))

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to load identity for resend confirmation")
	}

	if identity.EmailConfirmed {
		return nil
	}

	srv.sendConfirmationMail(ctx, identity)

	return nil
}

// ForgotPassword mails a reset code to confirmed accounts. It always succeeds
// from the caller's perspective.
func (srv *accountService) ForgotPassword(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)

	identity, err := srv.identityRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		srv.log(ctx).Debug("Password reset requested for unknown email", slog.String("email", email))

		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to load identity for password reset")
	}

	// Unconfirmed accounts get no reset mail. The response stays uniform.
	if !identity.EmailConfirmed {
		return nil
	}

	code, err := srv.purposeTokens.Issue(ctx, identity.ID, service.PurposePasswordReset)
	if err != nil {
		srv.log(ctx).Error("Failed to issue reset token", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil
	}

	link := fmt.Sprintf("%s/reset-password?email=%s&resetCode=%s",
		srv.publicBaseURL, url.QueryEscape(identity.Email), url.QueryEscape(code))

	if err := srv.notifier.SendPasswordResetLink(ctx, identity, identity.Email, link); err != nil {
		srv.log(ctx).Error("Failed to send reset link mail", slog.Any("identityID", identity.ID), slog.Any("error", err))
	}
	if err := srv.notifier.SendPasswordResetCode(ctx, identity, identity.Email, code); err != nil {
		srv.log(ctx).Error("Failed to send reset mail", slog.Any("identityID", identity.ID), slog.Any("error", err))
	}

	return nil
}

// ResetPassword consumes a reset token and replaces the password. Every
// failure collapses into TOKEN_INVALID_OR_EXPIRED except password policy.
func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	email := entity.NormalizeEmail(input.Email)

	identity, err := srv.identityRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "reset for unknown email")
	}
	if err != nil {
		return errors.Wrap(err, "failed to load identity for password reset")
	}

	if !identity.EmailConfirmed {
		return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "reset for unconfirmed account")
	}

	tokenIdentityID, err := srv.purposeTokens.Verify(ctx, input.ResetCode, service.PurposePasswordReset)
	if err != nil || tokenIdentityID != identity.ID {
		srv.log(ctx).Warn("Password reset token rejected", slog.Any("identityID", identity.ID))

		return errors.Wrap(domainerrors.ErrTokenInvalidOrExpired, "reset token rejected")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return errors.Wrap(domainerrors.ErrPasswordStrength, err.Error())
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(domainerrors.ErrPasswordHashFailed, "failed to hash new password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		if lockErr := identityRepo.AcquireLock(ctx, identity.ID); lockErr != nil {
			return errors.Wrap(lockErr, "failed to lock identity row")
		}

		current, findErr := identityRepo.FindByID(ctx, identity.ID)
		if findErr != nil {
			return errors.Wrap(findErr, "failed to reload identity")
		}

		current.PasswordHash = hashedPassword

		// A successful reset also clears any pending lockout.
		current.FailedLoginAttempts = 0
		current.LastFailedLoginAt = nil
		current.LockoutUntil = nil

		return identityRepo.Update(ctx, current)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to reset password", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute password reset transaction")
	}

	srv.log(ctx).Info("Password reset completed", slog.Any("identityID", identity.ID))

	return nil
}

// GetInfo returns the user-info projection for an authenticated identity.
func (srv *accountService) GetInfo(ctx context.Context, identityID uuid.UUID) (*usecase.UserInfo, error) {
	identity, err := srv.identityRepo.FindByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "identity not found")
		}

		return nil, errors.Wrap(err, "failed to load identity info")
	}

	return userInfoFrom(identity), nil
}

func userInfoFrom(identity *entity.Identity) *usecase.UserInfo {
	info := &usecase.UserInfo{
		Email:            identity.Email,
		IsEmailConfirmed: identity.EmailConfirmed,
	}

	if picture := identity.ClaimValue(entity.ClaimTypePicture); picture != "" {
		info.Picture = &picture
	}

	return info
}
