// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

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

// dummyPasswordHash is a valid bcrypt hash of a random string that is never a
// real password. Checking against it keeps the response time of unknown-email
// logins in line with wrong-password logins.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// loginService implements the LoginUsecase interface.
type loginService struct {
	txManager         repository.TransactionManager
	identityRepo      repository.IdentityRepository
	twoFactorRepo     repository.TwoFactorRepository
	hasher            service.PasswordHasher
	totp              service.TOTPService
	recoveryCodes     service.RecoveryCodeGenerator
	sessions          service.SessionIssuer
	maxFailedAttempts int
	lockoutWindow     time.Duration
	lockoutDuration   time.Duration
	requireConfirmed  bool
	logger            *slog.Logger
}

// LoginServiceParams holds dependencies for loginService, injected by Fx.
type LoginServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	IdentityRepo  repository.IdentityRepository
	TwoFactorRepo repository.TwoFactorRepository
	Hasher        service.PasswordHasher
	TOTP          service.TOTPService
	RecoveryCodes service.RecoveryCodeGenerator
	Sessions      service.SessionIssuer
	Config        *config.Config
	Logger        *slog.Logger
}

// NewLoginService is the constructor for loginService. It receives all dependencies as interfaces.
func NewLoginService(params LoginServiceParams) usecase.LoginUsecase {
	authCfg := params.Config.Auth

	return &loginService{
		txManager:         params.TxManager,
		identityRepo:      params.IdentityRepo,
		twoFactorRepo:     params.TwoFactorRepo,
		hasher:            params.Hasher,
		totp:              params.TOTP,
		recoveryCodes:     params.RecoveryCodes,
		sessions:          params.Sessions,
		maxFailedAttempts: authCfg.MaxFailedAttempts,
		lockoutWindow:     authCfg.LockoutWindow,
		lockoutDuration:   authCfg.LockoutDuration,
		requireConfirmed:  authCfg.RequireConfirmedEmail,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *loginService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login authenticates a password (and optionally second-factor) credential and
// issues exactly one session on success.
func (srv *loginService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Debug("Starting login", slog.String("email", email))

	identity, err := srv.identityRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrIdentityNotFound) {
		// Burn a bcrypt comparison so unknown emails cost the same as wrong passwords.
		srv.hasher.Check(input.Password, dummyPasswordHash)
		srv.log(ctx).Warn("Login failed, unknown email", slog.String("email", email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load identity for login")
	}

	now := time.Now()
	if identity.IsLockedOut(now) {
		srv.log(ctx).Warn("Login rejected, identity locked out", slog.Any("identityID", identity.ID))

		return nil, errors.Wrap(domainerrors.ErrLockedOut, "login failed")
	}

	// External-only accounts carry no password hash; they cannot log in here.
	if identity.PasswordHash == "" {
		srv.hasher.Check(input.Password, dummyPasswordHash)

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, identity.PasswordHash) {
		return nil, srv.registerFailure(ctx, identity.ID, domainerrors.ErrInvalidCredentials)
	}

	if srv.requireConfirmed && !identity.EmailConfirmed {
		srv.log(ctx).Warn("Login rejected, email not confirmed", slog.Any("identityID", identity.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "email not confirmed")
	}

	if err := srv.checkSecondFactor(ctx, identity.ID, input, now); err != nil {
		return nil, err
	}

	if err := srv.clearFailures(ctx, identity.ID); err != nil {
		return nil, err
	}

	session, err := srv.sessions.Issue(ctx, identity.ID, input.RememberMe)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session", slog.Any("identityID", identity.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue session")
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("identityID", identity.ID), slog.Bool("persistent", input.RememberMe))

	return &usecase.LoginOutput{Session: session, Identity: identity}, nil
}

// checkSecondFactor enforces the TOTP second factor when it is enabled for the
// identity. Wrong codes count toward the lockout threshold like wrong passwords.
func (srv *loginService) checkSecondFactor(ctx context.Context, identityID uuid.UUID, input *usecase.LoginInput, now time.Time) error {
	credential, err := srv.twoFactorRepo.FindCredential(ctx, identityID)
	if errors.Is(err, repository.ErrTwoFactorNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to load two-factor credential")
	}
	if credential.State() != entity.TwoFactorEnabled {
		return nil
	}

	switch {
	case input.TwoFactorCode != "":
		if !srv.totp.Verify(credential.Secret, input.TwoFactorCode, now) {
			srv.log(ctx).Warn("Login failed, bad two-factor code", slog.Any("identityID", identityID))

			return srv.registerFailure(ctx, identityID, domainerrors.ErrInvalidTwoFactorCode)
		}

		return nil

	case input.TwoFactorRecoveryCode != "":
		return srv.consumeRecoveryCode(ctx, identityID, input.TwoFactorRecoveryCode)

	default:
		srv.log(ctx).Debug("Login requires second factor", slog.Any("identityID", identityID))

		return errors.Wrap(domainerrors.ErrRequiresTwoFactor, "second factor required")
	}
}

func (srv *loginService) consumeRecoveryCode(ctx context.Context, identityID uuid.UUID, code string) error {
	codeHash := srv.recoveryCodes.HashCode(code)

	var consumed bool
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var consumeErr error
		consumed, consumeErr = repoFactory.TwoFactorRepo().ConsumeRecoveryCode(ctx, identityID, codeHash)

		return consumeErr
	})
	if err != nil {
		return errors.Wrap(err, "failed to consume recovery code")
	}

	if !consumed {
		srv.log(ctx).Warn("Login failed, bad recovery code", slog.Any("identityID", identityID))

		return srv.registerFailure(ctx, identityID, domainerrors.ErrInvalidTwoFactorCode)
	}

	return nil
}

// registerFailure records a failed attempt under a row lock and returns the
// caller's error, upgraded to LOCKED_OUT when this attempt crosses the threshold.
func (srv *loginService) registerFailure(ctx context.Context, identityID uuid.UUID, cause error) error {
	lockedNow := false

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		if err := identityRepo.AcquireLock(ctx, identityID); err != nil {
			return errors.Wrap(err, "failed to lock identity row")
		}

		identity, err := identityRepo.FindByID(ctx, identityID)
		if err != nil {
			return errors.Wrap(err, "failed to reload identity")
		}

		now := time.Now()

		// A failure outside the window restarts the counter.
		if identity.LastFailedLoginAt != nil && now.Sub(*identity.LastFailedLoginAt) > srv.lockoutWindow {
			identity.FailedLoginAttempts = 0
		}

		identity.FailedLoginAttempts++
		identity.LastFailedLoginAt = &now

		if identity.FailedLoginAttempts >= srv.maxFailedAttempts {
			until := now.Add(srv.lockoutDuration)
			identity.LockoutUntil = &until
			identity.FailedLoginAttempts = 0
			lockedNow = true
		}

		return identityRepo.Update(ctx, identity)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to record login failure", slog.Any("identityID", identityID), slog.Any("error", err))

		return errors.Wrap(err, "failed to record login failure")
	}

	if lockedNow {
		srv.log(ctx).Warn("Identity locked out", slog.Any("identityID", identityID))

		return errors.Wrap(domainerrors.ErrLockedOut, "login failure threshold crossed")
	}

	return errors.Wrap(cause, "login failed")
}

// clearFailures resets the lockout counters after a fully successful login.
func (srv *loginService) clearFailures(ctx context.Context, identityID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()

		if err := identityRepo.AcquireLock(ctx, identityID); err != nil {
			return errors.Wrap(err, "failed to lock identity row")
		}

		identity, err := identityRepo.FindByID(ctx, identityID)
		if err != nil {
			return errors.Wrap(err, "failed to reload identity")
		}

		if identity.FailedLoginAttempts == 0 && identity.LastFailedLoginAt == nil && identity.LockoutUntil == nil {
			return nil
		}

		identity.FailedLoginAttempts = 0
		identity.LastFailedLoginAt = nil
		identity.LockoutUntil = nil

		return identityRepo.Update(ctx, identity)
	})
	if err != nil {
		return errors.Wrap(err, "failed to reset login failures")
	}

	return nil
}

// Logout revokes the session token. Unknown tokens are ignored.
func (srv *loginService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := srv.sessions.Revoke(ctx, token); err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err))

		return errors.Wrap(err, "failed to revoke session")
	}

	srv.log(ctx).Info("Logged out")

	return nil
}
