package impl

import (
	"context"
	"testing"
	"time"

	"passport/config"
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

// loginFixtures holds all test dependencies for login service tests.
type loginFixtures struct {
	service       usecase.LoginUsecase
	txManager     *mockRepo.MockTransactionManager
	identityRepo  *mockRepo.MockIdentityRepository
	twoFactorRepo *mockRepo.MockTwoFactorRepository
	hasher        *mockSvc.MockPasswordHasher
	totp          *mockSvc.MockTOTPService
	recoveryCodes *mockSvc.MockRecoveryCodeGenerator
	sessions      *mockSvc.MockSessionIssuer
}

func createTestLoginService(t *testing.T) loginFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	identityRepo := mockRepo.NewMockIdentityRepository(t)
	twoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	totp := mockSvc.NewMockTOTPService(t)
	recoveryCodes := mockSvc.NewMockRecoveryCodeGenerator(t)
	sessions := mockSvc.NewMockSessionIssuer(t)

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			MaxFailedAttempts: 3,
			LockoutWindow:     10 * time.Minute,
			LockoutDuration:   5 * time.Minute,
		},
	}

	service := NewLoginService(LoginServiceParams{
		TxManager:     txManager,
		IdentityRepo:  identityRepo,
		TwoFactorRepo: twoFactorRepo,
		Hasher:        hasher,
		TOTP:          totp,
		RecoveryCodes: recoveryCodes,
		Sessions:      sessions,
		Config:        cfg,
		Logger:        newDiscardLogger(),
	})

	return loginFixtures{
		service:       service,
		txManager:     txManager,
		identityRepo:  identityRepo,
		twoFactorRepo: twoFactorRepo,
		hasher:        hasher,
		totp:          totp,
		recoveryCodes: recoveryCodes,
		sessions:      sessions,
	}
}

// expectTxWithIdentityRepo wires one transaction whose factory hands out the
// given identity repository mock.
func expectTxWithIdentityRepo(t *testing.T, txManager *mockRepo.MockTransactionManager, identityRepo *mockRepo.MockIdentityRepository) {
	txManager.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.On("IdentityRepo").Return(identityRepo)

			return fn(factory)
		}).Once()
}

func testIdentity(passwordHash string) *entity.Identity {
	return &entity.Identity{
		ID:             uuid.New(),
		Email:          "user@example.com",
		PasswordHash:   passwordHash,
		EmailConfirmed: true,
	}
}

func TestLoginService_Login_Success(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	input := &usecase.LoginInput{Email: "User@Example.com", Password: "Password123!"}

	fx.identityRepo.On("FindByEmail", ctx, "user@example.com").Return(identity, nil)
	fx.hasher.On("Check", input.Password, identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(nil, repository.ErrTwoFactorNotFound)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	session := &entity.Session{Token: "tok", IdentityID: identity.ID}
	fx.sessions.On("Issue", ctx, identity.ID, false).Return(session, nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, session, output.Session)
	assert.Equal(t, identity, output.Identity)
}

func TestLoginService_Login_UnknownEmail(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	input := &usecase.LoginInput{Email: "nobody@example.com", Password: "whatever"}

	fx.identityRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrIdentityNotFound)
	// A dummy comparison keeps unknown emails indistinguishable by timing.
	fx.hasher.On("Check", input.Password, dummyPasswordHash).Return(false)

	output, err := fx.service.Login(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestLoginService_Login_LockedOut(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	until := time.Now().Add(5 * time.Minute)
	identity := testIdentity("hashed_password")
	identity.LockoutUntil = &until

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "Password123!"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrLockedOut))
}

func TestLoginService_Login_ExternalOnlyAccount(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("")

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", dummyPasswordHash).Return(false)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "Password123!"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestLoginService_Login_WrongPasswordCountsFailure(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "wrong", identity.PasswordHash).Return(false)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	txIdentityRepo.On("Update", ctx, mock.MatchedBy(func(updated *entity.Identity) bool {
		return updated.FailedLoginAttempts == 1 && updated.LastFailedLoginAt != nil && updated.LockoutUntil == nil
	})).Return(nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "wrong"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestLoginService_Login_ThresholdCrossingLocksOut(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	recent := time.Now().Add(-time.Minute)
	identity := testIdentity("hashed_password")
	identity.FailedLoginAttempts = 2
	identity.LastFailedLoginAt = &recent

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "wrong", identity.PasswordHash).Return(false)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	txIdentityRepo.On("Update", ctx, mock.MatchedBy(func(updated *entity.Identity) bool {
		// The counter resets once the lockout takes effect.
		return updated.LockoutUntil != nil && updated.FailedLoginAttempts == 0
	})).Return(nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "wrong"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrLockedOut))
}

func TestLoginService_Login_StaleFailuresRestartCounter(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	stale := time.Now().Add(-time.Hour)
	identity := testIdentity("hashed_password")
	identity.FailedLoginAttempts = 2
	identity.LastFailedLoginAt = &stale

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "wrong", identity.PasswordHash).Return(false)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	txIdentityRepo.On("Update", ctx, mock.MatchedBy(func(updated *entity.Identity) bool {
		return updated.FailedLoginAttempts == 1 && updated.LockoutUntil == nil
	})).Return(nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "wrong"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestLoginService_Login_RequiresSecondFactor(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET", Enabled: true}

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: identity.Email, Password: "Password123!"})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRequiresTwoFactor))
}

func TestLoginService_Login_WithTOTPCode(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET", Enabled: true}

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)
	fx.totp.On("Verify", credential.Secret, "123456", mock.AnythingOfType("time.Time")).Return(true)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	session := &entity.Session{Token: "tok", IdentityID: identity.ID, Persistent: true}
	fx.sessions.On("Issue", ctx, identity.ID, true).Return(session, nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:         identity.Email,
		Password:      "Password123!",
		TwoFactorCode: "123456",
		RememberMe:    true,
	})

	require.NoError(t, err)
	assert.True(t, output.Session.Persistent)
}

func TestLoginService_Login_BadTOTPCodeCountsFailure(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET", Enabled: true}

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)
	fx.totp.On("Verify", credential.Secret, "000000", mock.AnythingOfType("time.Time")).Return(false)

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	txIdentityRepo.On("Update", ctx, mock.AnythingOfType("*entity.Identity")).Return(nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:         identity.Email,
		Password:      "Password123!",
		TwoFactorCode: "000000",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidTwoFactorCode))
}

func TestLoginService_Login_WithRecoveryCode(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET", Enabled: true}

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)
	fx.recoveryCodes.On("HashCode", "ABCDE-FGHJK").Return("hash")

	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("ConsumeRecoveryCode", ctx, identity.ID, "hash").Return(true, nil)
	fx.txManager.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.On("TwoFactorRepo").Return(txTwoFactorRepo)

			return fn(factory)
		}).Once()

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	session := &entity.Session{Token: "tok", IdentityID: identity.ID}
	fx.sessions.On("Issue", ctx, identity.ID, false).Return(session, nil)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:                 identity.Email,
		Password:              "Password123!",
		TwoFactorRecoveryCode: "ABCDE-FGHJK",
	})

	require.NoError(t, err)
	assert.Equal(t, session, output.Session)
}

func TestLoginService_Login_UsedRecoveryCodeRejected(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	identity := testIdentity("hashed_password")
	credential := &entity.TwoFactorCredential{IdentityID: identity.ID, Secret: "SECRET", Enabled: true}

	fx.identityRepo.On("FindByEmail", ctx, identity.Email).Return(identity, nil)
	fx.hasher.On("Check", "Password123!", identity.PasswordHash).Return(true)
	fx.twoFactorRepo.On("FindCredential", ctx, identity.ID).Return(credential, nil)
	fx.recoveryCodes.On("HashCode", "ABCDE-FGHJK").Return("hash")

	txTwoFactorRepo := mockRepo.NewMockTwoFactorRepository(t)
	txTwoFactorRepo.On("ConsumeRecoveryCode", ctx, identity.ID, "hash").Return(false, nil)
	fx.txManager.On("Execute", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			factory := mockRepo.NewMockRepositoryFactory(t)
			factory.On("TwoFactorRepo").Return(txTwoFactorRepo)

			return fn(factory)
		}).Once()

	txIdentityRepo := mockRepo.NewMockIdentityRepository(t)
	txIdentityRepo.On("AcquireLock", ctx, identity.ID).Return(nil)
	txIdentityRepo.On("FindByID", ctx, identity.ID).Return(identity, nil)
	txIdentityRepo.On("Update", ctx, mock.AnythingOfType("*entity.Identity")).Return(nil)
	expectTxWithIdentityRepo(t, fx.txManager, txIdentityRepo)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{
		Email:                 identity.Email,
		Password:              "Password123!",
		TwoFactorRecoveryCode: "ABCDE-FGHJK",
	})

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidTwoFactorCode))
}

func TestLoginService_Logout(t *testing.T) {
	fx := createTestLoginService(t)
	ctx := context.Background()

	fx.sessions.On("Revoke", ctx, "tok").Return(nil)

	require.NoError(t, fx.service.Logout(ctx, "tok"))
}

func TestLoginService_Logout_EmptyTokenIsNoop(t *testing.T) {
	fx := createTestLoginService(t)

	require.NoError(t, fx.service.Logout(context.Background(), ""))
}
