package impl

import (
	"context"
	"log/slog"
	"time"

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

// twoFactorService implements the TwoFactorUsecase interface.
type twoFactorService struct {
	txManager     repository.TransactionManager
	identityRepo  repository.IdentityRepository
	twoFactorRepo repository.TwoFactorRepository
	totp          service.TOTPService
	recoveryCodes service.RecoveryCodeGenerator
	qrCodes       service.QRCodeService
	logger        *slog.Logger
}

// TwoFactorServiceParams holds dependencies for twoFactorService, injected by Fx.
type TwoFactorServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	IdentityRepo  repository.IdentityRepository
	TwoFactorRepo repository.TwoFactorRepository
	TOTP          service.TOTPService
	RecoveryCodes service.RecoveryCodeGenerator
	QRCodes       service.QRCodeService
	Logger        *slog.Logger
}

// NewTwoFactorService is the constructor for twoFactorService.
func NewTwoFactorService(params TwoFactorServiceParams) usecase.TwoFactorUsecase {
	return &twoFactorService{
		txManager:     params.TxManager,
		identityRepo:  params.IdentityRepo,
		twoFactorRepo: params.TwoFactorRepo,
		totp:          params.TOTP,
		recoveryCodes: params.RecoveryCodes,
		qrCodes:       params.QRCodes,
		logger:        params.Logger,
	}
}

func (srv *twoFactorService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Status reports the current second-factor state for the identity.
func (srv *twoFactorService) Status(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	credential, err := srv.loadCredential(ctx, identityID)
	if err != nil {
		return nil, err
	}

	return srv.buildStatus(ctx, identityID, credential, nil)
}

// BeginSetup creates the pending shared key, or returns the existing one when
// setup was already started. Concurrent calls serialize on the identity row so
// both callers see the same key.
func (srv *twoFactorService) BeginSetup(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	var credential *entity.TwoFactorCredential

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		twoFactorRepo := repoFactory.TwoFactorRepo()

		if lockErr := identityRepo.AcquireLock(ctx, identityID); lockErr != nil {
			return errors.Wrap(lockErr, "failed to lock identity row")
		}

		existing, findErr := twoFactorRepo.FindCredential(ctx, identityID)
		if findErr != nil && !errors.Is(findErr, repository.ErrTwoFactorNotFound) {
			return errors.Wrap(findErr, "failed to load two-factor credential")
		}

		if existing != nil {
			if existing.State() == entity.TwoFactorEnabled {
				return errors.Wrap(domainerrors.ErrConflict, "two-factor already enabled")
			}

			// Setup already pending: hand back the same key.
			credential = existing

			return nil
		}

		secret, genErr := srv.totp.GenerateSecret()
		if genErr != nil {
			return errors.Wrap(genErr, "failed to generate shared secret")
		}

		credential = &entity.TwoFactorCredential{
			IdentityID: identityID,
			Secret:     secret,
		}

		return twoFactorRepo.SaveCredential(ctx, credential)
	})
	if err != nil {
		srv.log(ctx).Warn("Two-factor setup failed", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute two-factor setup transaction")
	}

	srv.log(ctx).Info("Two-factor setup started", slog.Any("identityID", identityID))

	return srv.buildStatus(ctx, identityID, credential, nil)
}

// Enable verifies possession of the pending shared key and turns the factor
// on. The returned recovery codes are shown exactly once.
func (srv *twoFactorService) Enable(ctx context.Context, identityID uuid.UUID, code string) (*usecase.TwoFactorStatus, error) {
	var credential *entity.TwoFactorCredential
	var plaintextCodes []string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		twoFactorRepo := repoFactory.TwoFactorRepo()

		if lockErr := identityRepo.AcquireLock(ctx, identityID); lockErr != nil {
			return errors.Wrap(lockErr, "failed to lock identity row")
		}

		existing, findErr := twoFactorRepo.FindCredential(ctx, identityID)
		if errors.Is(findErr, repository.ErrTwoFactorNotFound) {
			return errors.Wrap(domainerrors.ErrTwoFactorSetupRequired, "no pending shared key")
		}
		if findErr != nil {
			return errors.Wrap(findErr, "failed to load two-factor credential")
		}

		switch existing.State() {
		case entity.TwoFactorEnabled:
			return errors.Wrap(domainerrors.ErrConflict, "two-factor already enabled")
		case entity.TwoFactorDisabled:
			return errors.Wrap(domainerrors.ErrTwoFactorSetupRequired, "no pending shared key")
		case entity.TwoFactorSetupPending:
		}

		if !srv.totp.Verify(existing.Secret, code, time.Now()) {
			return errors.Wrap(domainerrors.ErrInvalidTwoFactorCode, "verification code rejected")
		}

		existing.Enabled = true
		if saveErr := twoFactorRepo.SaveCredential(ctx, existing); saveErr != nil {
			return errors.Wrap(saveErr, "failed to enable two-factor credential")
		}

		codes, genErr := srv.generateRecoveryBatch(ctx, twoFactorRepo, identityID)
		if genErr != nil {
			return genErr
		}

		credential = existing
		plaintextCodes = codes

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Two-factor enable failed", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute two-factor enable transaction")
	}

	srv.log(ctx).Info("Two-factor enabled", slog.Any("identityID", identityID))

	return srv.buildStatus(ctx, identityID, credential, plaintextCodes)
}

// Disable turns the second factor off and discards the key and every recovery
// code. Disabling an already-disabled factor is a no-op.
func (srv *twoFactorService) Disable(ctx context.Context, identityID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		twoFactorRepo := repoFactory.TwoFactorRepo()

		if delErr := twoFactorRepo.DeleteCredential(ctx, identityID); delErr != nil {
			return errors.Wrap(delErr, "failed to delete two-factor credential")
		}

		return errors.Wrap(twoFactorRepo.DeleteRecoveryCodes(ctx, identityID), "failed to delete recovery codes")
	})
	if err != nil {
		srv.log(ctx).Error("Two-factor disable failed", slog.Any("identityID", identityID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute two-factor disable transaction")
	}

	srv.log(ctx).Info("Two-factor disabled", slog.Any("identityID", identityID))

	return nil
}

// ResetSharedKey replaces the shared key with a fresh one and drops the factor
// back to setup-pending. Recovery codes survive; logins require the new key to
// be verified again before the factor re-arms. Repeating the call while setup
// is still pending simply mints another key.
func (srv *twoFactorService) ResetSharedKey(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	var credential *entity.TwoFactorCredential

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		twoFactorRepo := repoFactory.TwoFactorRepo()

		if lockErr := identityRepo.AcquireLock(ctx, identityID); lockErr != nil {
			return errors.Wrap(lockErr, "failed to lock identity row")
		}

		existing, findErr := twoFactorRepo.FindCredential(ctx, identityID)
		if errors.Is(findErr, repository.ErrTwoFactorNotFound) {
			return errors.Wrap(domainerrors.ErrTwoFactorNotEnabled, "two-factor not enabled")
		}
		if findErr != nil {
			return errors.Wrap(findErr, "failed to load two-factor credential")
		}
		if existing.State() == entity.TwoFactorDisabled {
			return errors.Wrap(domainerrors.ErrTwoFactorNotEnabled, "two-factor not enabled")
		}

		secret, genErr := srv.totp.GenerateSecret()
		if genErr != nil {
			return errors.Wrap(genErr, "failed to generate shared secret")
		}

		existing.Secret = secret
		existing.Enabled = false

		if saveErr := twoFactorRepo.SaveCredential(ctx, existing); saveErr != nil {
			return errors.Wrap(saveErr, "failed to save reset credential")
		}

		credential = existing

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Two-factor key reset failed", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute two-factor reset transaction")
	}

	srv.log(ctx).Info("Two-factor shared key reset", slog.Any("identityID", identityID))

	return srv.buildStatus(ctx, identityID, credential, nil)
}

// RegenerateRecoveryCodes replaces all recovery codes with a new batch.
func (srv *twoFactorService) RegenerateRecoveryCodes(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	var credential *entity.TwoFactorCredential
	var plaintextCodes []string

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		identityRepo := repoFactory.IdentityRepo()
		twoFactorRepo := repoFactory.TwoFactorRepo()

		if lockErr := identityRepo.AcquireLock(ctx, identityID); lockErr != nil {
			return errors.Wrap(lockErr, "failed to lock identity row")
		}

		existing, findErr := twoFactorRepo.FindCredential(ctx, identityID)
		if errors.Is(findErr, repository.ErrTwoFactorNotFound) {
			return errors.Wrap(domainerrors.ErrTwoFactorNotEnabled, "two-factor not enabled")
		}
		if findErr != nil {
			return errors.Wrap(findErr, "failed to load two-factor credential")
		}
		if existing.State() != entity.TwoFactorEnabled {
			return errors.Wrap(domainerrors.ErrTwoFactorNotEnabled, "two-factor not enabled")
		}

		codes, genErr := srv.generateRecoveryBatch(ctx, twoFactorRepo, identityID)
		if genErr != nil {
			return genErr
		}

		credential = existing
		plaintextCodes = codes

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Recovery code regeneration failed", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute recovery code transaction")
	}

	srv.log(ctx).Info("Recovery codes regenerated", slog.Any("identityID", identityID))

	return srv.buildStatus(ctx, identityID, credential, plaintextCodes)
}

// ProvisioningQR renders the shared key's otpauth URI as a PNG.
func (srv *twoFactorService) ProvisioningQR(ctx context.Context, identityID uuid.UUID) ([]byte, error) {
	credential, err := srv.loadCredential(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if credential.State() == entity.TwoFactorDisabled {
		return nil, errors.Wrap(domainerrors.ErrTwoFactorSetupRequired, "no shared key to render")
	}

	identity, err := srv.identityRepo.FindByID(ctx, identityID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load identity for provisioning QR")
	}

	uri := srv.totp.ProvisioningURI(credential.Secret, identity.Email)

	png, err := srv.qrCodes.GenerateProvisioningQR(uri)
	if err != nil {
		srv.log(ctx).Error("Failed to render provisioning QR", slog.Any("identityID", identityID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to render provisioning QR")
	}

	return png, nil
}

// generateRecoveryBatch mints a fresh batch and swaps it in atomically.
func (srv *twoFactorService) generateRecoveryBatch(ctx context.Context, twoFactorRepo repository.TwoFactorRepository, identityID uuid.UUID) ([]string, error) {
	codes, err := srv.recoveryCodes.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate recovery codes")
	}

	hashed := make([]*entity.RecoveryCode, 0, len(codes))
	for _, code := range codes {
		hashed = append(hashed, &entity.RecoveryCode{
			IdentityID: identityID,
			CodeHash:   srv.recoveryCodes.HashCode(code),
		})
	}

	if err := twoFactorRepo.ReplaceRecoveryCodes(ctx, identityID, hashed); err != nil {
		return nil, errors.Wrap(err, "failed to replace recovery codes")
	}

	return codes, nil
}

func (srv *twoFactorService) loadCredential(ctx context.Context, identityID uuid.UUID) (*entity.TwoFactorCredential, error) {
	credential, err := srv.twoFactorRepo.FindCredential(ctx, identityID)
	if errors.Is(err, repository.ErrTwoFactorNotFound) {
		return &entity.TwoFactorCredential{IdentityID: identityID}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load two-factor credential")
	}

	return credential, nil
}

// buildStatus assembles the status projection. The shared key and its
// provisioning URI appear only while setup is pending; plaintext recovery
// codes only when this call just minted them.
func (srv *twoFactorService) buildStatus(ctx context.Context, identityID uuid.UUID, credential *entity.TwoFactorCredential, freshCodes []string) (*usecase.TwoFactorStatus, error) {
	status := &usecase.TwoFactorStatus{
		State:         credential.State(),
		RecoveryCodes: freshCodes,
	}

	if len(freshCodes) > 0 {
		status.RecoveryCodesLeft = len(freshCodes)
	} else if credential.State() != entity.TwoFactorDisabled {
		count, err := srv.twoFactorRepo.CountRecoveryCodes(ctx, identityID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to count recovery codes")
		}
		status.RecoveryCodesLeft = count
	}

	if credential.State() == entity.TwoFactorSetupPending {
		identity, err := srv.identityRepo.FindByID(ctx, identityID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load identity for provisioning URI")
		}

		status.SharedKey = credential.Secret
		status.ProvisioningURI = srv.totp.ProvisioningURI(credential.Secret, identity.Email)
	}

	return status, nil
}
