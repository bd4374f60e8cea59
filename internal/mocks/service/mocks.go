// Package service contains hand-maintained testify mocks for the domain
// service interfaces.
package service

import (
	"context"
	"time"

	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockPasswordHasher is a mock for service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

func (m *MockPasswordHasher) ValidatePasswordStrength(password string) error {
	args := m.Called(password)

	return args.Error(0)
}

// MockSessionIssuer is a mock for service.SessionIssuer.
type MockSessionIssuer struct {
	mock.Mock
}

func NewMockSessionIssuer(t testingT) *MockSessionIssuer {
	m := &MockSessionIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionIssuer) Issue(ctx context.Context, identityID uuid.UUID, persistent bool) (*entity.Session, error) {
	args := m.Called(ctx, identityID, persistent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionIssuer) Validate(ctx context.Context, token string) (*entity.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Session), args.Error(1)
}

func (m *MockSessionIssuer) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

// MockTOTPService is a mock for service.TOTPService.
type MockTOTPService struct {
	mock.Mock
}

func NewMockTOTPService(t testingT) *MockTOTPService {
	m := &MockTOTPService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTOTPService) GenerateSecret() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *MockTOTPService) ProvisioningURI(secret, account string) string {
	args := m.Called(secret, account)

	return args.String(0)
}

func (m *MockTOTPService) Verify(secret, code string, now time.Time) bool {
	args := m.Called(secret, code, now)

	return args.Bool(0)
}

// MockRecoveryCodeGenerator is a mock for service.RecoveryCodeGenerator.
type MockRecoveryCodeGenerator struct {
	mock.Mock
}

func NewMockRecoveryCodeGenerator(t testingT) *MockRecoveryCodeGenerator {
	m := &MockRecoveryCodeGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRecoveryCodeGenerator) Generate() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecoveryCodeGenerator) HashCode(code string) string {
	args := m.Called(code)

	return args.String(0)
}

// MockPurposeTokenService is a mock for service.PurposeTokenService.
type MockPurposeTokenService struct {
	mock.Mock
}

func NewMockPurposeTokenService(t testingT) *MockPurposeTokenService {
	m := &MockPurposeTokenService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPurposeTokenService) Issue(ctx context.Context, identityID uuid.UUID, purpose service.TokenPurpose) (string, error) {
	args := m.Called(ctx, identityID, purpose)

	return args.String(0), args.Error(1)
}

func (m *MockPurposeTokenService) Verify(ctx context.Context, token string, purpose service.TokenPurpose) (uuid.UUID, error) {
	args := m.Called(ctx, token, purpose)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockOAuthAuthService is a mock for service.OAuthAuthService.
type MockOAuthAuthService struct {
	mock.Mock
}

func NewMockOAuthAuthService(t testingT) *MockOAuthAuthService {
	m := &MockOAuthAuthService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOAuthAuthService) BuildAuthorizationURL(state string) string {
	args := m.Called(state)

	return args.String(0)
}

func (m *MockOAuthAuthService) ExchangeCode(ctx context.Context, code string) (*service.OAuthUser, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*service.OAuthUser), args.Error(1)
}

func (m *MockOAuthAuthService) Provider() entity.ProviderType {
	args := m.Called()

	return args.Get(0).(entity.ProviderType)
}

// MockOAuthStateStore is a mock for service.OAuthStateStore.
type MockOAuthStateStore struct {
	mock.Mock
}

func NewMockOAuthStateStore(t testingT) *MockOAuthStateStore {
	m := &MockOAuthStateStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockOAuthStateStore) Save(ctx context.Context, state, returnURL string) error {
	args := m.Called(ctx, state, returnURL)

	return args.Error(0)
}

func (m *MockOAuthStateStore) Consume(ctx context.Context, state string) (string, bool, error) {
	args := m.Called(ctx, state)

	return args.String(0), args.Bool(1), args.Error(2)
}

// MockNotifier is a mock for service.Notifier.
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier(t testingT) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockNotifier) SendConfirmationLink(ctx context.Context, identity *entity.Identity, email, link string) error {
	args := m.Called(ctx, identity, email, link)

	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetLink(ctx context.Context, identity *entity.Identity, email, link string) error {
	args := m.Called(ctx, identity, email, link)

	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetCode(ctx context.Context, identity *entity.Identity, email, code string) error {
	args := m.Called(ctx, identity, email, code)

	return args.Error(0)
}

// MockQRCodeService is a mock for service.QRCodeService.
type MockQRCodeService struct {
	mock.Mock
}

func NewMockQRCodeService(t testingT) *MockQRCodeService {
	m := &MockQRCodeService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockQRCodeService) GenerateProvisioningQR(provisioningURI string) ([]byte, error) {
	args := m.Called(provisioningURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}
