package impl

import (
	"context"
	"testing"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	mockRepo "passport/internal/mocks/repository"
	mockSvc "passport/internal/mocks/service"
	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// twoFactorFixtures holds all test dependencies for two-factor service tests.
type twoFactorFixtures struct {
	service       usecase.TwoFactorUsecase
	txManager     *mockRepo.MockTransactionManager
	identityRepo  *mockRepo.MockIdentityRepository
	twoFactorRepo *mockRepo.MockTwoFactorRepository
	totp          *mockSvc.MockTOTPService
	recoveryCodes *mockSvc.MockRecoveryCodeGenerator
	qrCodes       *mockSvc.MockQRCodeService
}

func createTestTwoFactorService(t *testing.T) twoFactorFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	identityRepo := mockRepo.NewMockIdentityRepository(t)
	twoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	totp := mockSvc.NewMockTOTPService(t)
	recoveryCodes := mockSvc.NewMockRecoveryCodeGenerator(t)
	qrCodes := mockSvc.NewMockQRCodeService(t)

	svc := NewTwoFactorService(TwoFactorServiceParams{
		TxManager:     txManager,
		IdentityRepo:  identityRepo,
		TwoFactorRepo: twoFactorRepo,
		TOTP:          totp,
		RecoveryCodes: recoveryCodes,
		QRCodes:       qrCodes,
		Logger:        newDiscardLogger(),
	})

	return twoFactorFixtures{
		service:       svc,
		txManager:     txManager,
		identityRepo:  identityRepo,
		twoFactorRepo: twoFactorRepo,
		totp:          totp,
		recoveryCodes: recoveryCodes,
		qrCodes:       qrCodes,
	}
}

// expectTwoFactorTx wires one transaction whose factory hands out both
// repository mocks used by the two-factor flows.
func expectTwoFactorTx(t *testing.T, txManager *mockRepo.MockTransactionManager, identityRepo *mockRepo.MockIdentityRepository, twoFactorRepo *mockRepo.MockTwoFactorRepository) {
	txManager.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.On("IdentityRepo").Return(identityRepo).Maybe()
			factory.On("TwoFactorRepo").Return(twoFactorRepo)

			return fn(factory)
		}).Once()
}

func TestTwoFactorService_Status_Disabled(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.twoFactorRepo.On("FindCredential", ctx, id).Return(nil, repository.ErrTwoFactorNotFound)

	status, err := fx.service.Status(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorDisabled, status.State)
	assert.Empty(t, status.SharedKey)
	assert.Zero(t, status.RecoveryCodesLeft)
}

func TestTwoFactorService_Status_PendingExposesSharedKey(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET"}

	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)
	fx.twoFactorRepo.On("CountRecoveryCodes", ctx, identity.ID).Return(0, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "SECRET", identity.Email).Return("otpauth://totp/x")

	status, err := fx.service.Status(ctx, identity.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorSetupPending, status.State)
	assert.Equal(t, "SECRET", status.SharedKey)
	assert.Equal(t, "otpauth://totp/x", status.ProvisioningURI)
}

func TestTwoFactorService_BeginSetup_GeneratesKey(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, identity.ID).Return(nil, repository.ErrTwoFactorNotFound)
	txTwoFactorRepo.On("SaveCredential", ctx, mock.MatchedBy(func(c *entity.TwoFactorCredential) bool {
		return c.Secret == "FRESHKEY" && !c.Enabled
	})).Return(nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.totp.On("GenerateSecret").Return("FRESHKEY", nil)
	fx.twoFactorRepo.On("CountRecoveryCodes", ctx, identity.ID).Return(0, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "FRESHKEY", identity.Email).Return("otpauth://totp/x")

	status, err := fx.service.BeginSetup(ctx, identity.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorSetupPending, status.State)
	assert.Equal(t, "FRESHKEY", status.SharedKey)
}

func TestTwoFactorService_BeginSetup_ReturnsExistingPendingKey(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	pending := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "PENDING"}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, identity.ID).Return(pending, nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.twoFactorRepo.On("CountRecoveryCodes", ctx, identity.ID).Return(0, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "PENDING", identity.Email).Return("otpauth://totp/x")

	status, err := fx.service.BeginSetup(ctx, identity.ID)

	require.NoError(t, err)
	assert.Equal(t, "PENDING", status.SharedKey)
}

func TestTwoFactorService_BeginSetup_AlreadyEnabled(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	enabled := &entity.TwoFactorCredential{IdentityID: id, Secret: "SECRET", Enabled: true}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(enabled, nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	status, err := fx.service.BeginSetup(ctx, id)

	assert.Nil(t, status)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict))
}

func TestTwoFactorService_Enable_Success(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	pending := &entity.TwoFactorCredential{IdentityID: id, Secret: "SECRET"}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(pending, nil)
	txTwoFactorRepo.On("SaveCredential", ctx, mock.MatchedBy(func(c *entity.TwoFactorCredential) bool {
		return c.Enabled
	})).Return(nil)
	txTwoFactorRepo.On("ReplaceRecoveryCodes", ctx, id, mock.AnythingOfType("[]*entity.RecoveryCode")).Return(nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.totp.On("Verify", "SECRET", "123456", mock.AnythingOfType("time.Time")).Return(true)
	fx.recoveryCodes.On("Generate").Return([]string{"AAAAA-BBBBB", "CCCCC-DDDDD"}, nil)
	fx.recoveryCodes.On("HashCode", mock.AnythingOfType("string")).Return("hash")

	status, err := fx.service.Enable(ctx, id, "123456")

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorEnabled, status.State)
	assert.Equal(t, []string{"AAAAA-BBBBB", "CCCCC-DDDDD"}, status.RecoveryCodes)
	assert.Equal(t, 2, status.RecoveryCodesLeft)
	assert.Empty(t, status.SharedKey)
}

func TestTwoFactorService_Enable_BadCode(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	pending := &entity.TwoFactorCredential{IdentityID: id, Secret: "SECRET"}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(pending, nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.totp.On("Verify", "SECRET", "000000", mock.AnythingOfType("time.Time")).Return(false)

	status, err := fx.service.Enable(ctx, id, "000000")

	assert.Nil(t, status)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidTwoFactorCode))
}

func TestTwoFactorService_Enable_WithoutSetup(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(nil, repository.ErrTwoFactorNotFound)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	status, err := fx.service.Enable(ctx, id, "123456")

	assert.Nil(t, status)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorSetupRequired))
}

func TestTwoFactorService_Disable_IsIdempotent(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("DeleteCredential", ctx, id).Return(nil)
	txTwoFactorRepo.On("DeleteRecoveryCodes", ctx, id).Return(nil)
	fx.txManager.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.On("TwoFactorRepo").Return(txTwoFactorRepo)

			return fn(factory)
		}).Once()

	require.NoError(t, fx.service.Disable(ctx, id))
}

func TestTwoFactorService_ResetSharedKey_BackToPending(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	enabled := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "OLDKEY", Enabled: true}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, identity.ID).Return(enabled, nil)
	txTwoFactorRepo.On("SaveCredential", ctx, mock.MatchedBy(func(c *entity.TwoFactorCredential) bool {
		return c.Secret == "NEWKEY" && !c.Enabled
	})).Return(nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.totp.On("GenerateSecret").Return("NEWKEY", nil)
	fx.twoFactorRepo.On("CountRecoveryCodes", ctx, identity.ID).Return(8, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "NEWKEY", identity.Email).Return("otpauth://totp/x")

	status, err := fx.service.ResetSharedKey(ctx, identity.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorSetupPending, status.State)
	assert.Equal(t, "NEWKEY", status.SharedKey)
	// Recovery codes survive a key reset.
	assert.Equal(t, 8, status.RecoveryCodesLeft)
}

func TestTwoFactorService_ResetSharedKey_RepeatableWhilePending(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	// State after a previous reset: fresh key, factor not yet re-armed.
	pending := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "NEWKEY"}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, identity.ID).Return(pending, nil)
	txTwoFactorRepo.On("SaveCredential", ctx, mock.MatchedBy(func(c *entity.TwoFactorCredential) bool {
		return c.Secret == "NEWERKEY" && !c.Enabled
	})).Return(nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.totp.On("GenerateSecret").Return("NEWERKEY", nil)
	fx.twoFactorRepo.On("CountRecoveryCodes", ctx, identity.ID).Return(8, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "NEWERKEY", identity.Email).Return("otpauth://totp/x")

	status, err := fx.service.ResetSharedKey(ctx, identity.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.TwoFactorSetupPending, status.State)
	assert.Equal(t, "NEWERKEY", status.SharedKey)
}

func TestTwoFactorService_ResetSharedKey_FailsWhenDisabled(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(nil, repository.ErrTwoFactorNotFound)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	status, err := fx.service.ResetSharedKey(ctx, id)

	assert.Nil(t, status)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorNotEnabled))
}

func TestTwoFactorService_RegenerateRecoveryCodes_ReplacesBatch(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	enabled := &entity.TwoFactorCredential{IdentityID: id, Secret: "SECRET", Enabled: true}

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, id).Return(nil)
	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("FindCredential", ctx, id).Return(enabled, nil)
	txTwoFactorRepo.On("ReplaceRecoveryCodes", ctx, id, mock.MatchedBy(func(codes []*entity.RecoveryCode) bool {
		return len(codes) == 2
	})).Return(nil)
	expectTwoFactorTx(t, fx.txManager, txIdentityRepo, txTwoFactorRepo)

	fx.recoveryCodes.On("Generate").Return([]string{"AAAAA-BBBBB", "CCCCC-DDDDD"}, nil)
	fx.recoveryCodes.On("HashCode", mock.AnythingOfType("string")).Return("hash")

	status, err := fx.service.RegenerateRecoveryCodes(ctx, id)

	require.NoError(t, err)
	assert.Len(t, status.RecoveryCodes, 2)
	assert.Equal(t, entity.TwoFactorEnabled, status.State)
}

func TestTwoFactorService_ProvisioningQR_RendersPNG(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	pending := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET"}

	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(pending, nil)
	fx.identityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	fx.totp.On("ProvisioningURI", "SECRET", identity.Email).Return("otpauth://totp/x")
	fx.qrCodes.On("GenerateProvisioningQR", "otpauth://totp/x").Return([]byte{0x89, 'P', 'N', 'G'}, nil)

	png, err := fx.service.ProvisioningQR(ctx, identity.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestTwoFactorService_ProvisioningQR_NoSecret(t *testing.T) {
	fx := createTestTwoFactorService(t)
	ctx := context.Background()
	id := uuid.New()

	fx.twoFactorRepo.On("FindCredential", ctx, id).Return(nil, repository.ErrTwoFactorNotFound)

	png, err := fx.service.ProvisioningQR(ctx, id)

	assert.Nil(t, png)
	assert.True(t, errors.Is(err, domainerrors.ErrTwoFactorSetupRequired))
}
