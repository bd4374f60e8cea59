// Package usecase provides hand-maintained testify mocks for the usecase
// interfaces, used by the delivery layer tests.
package usecase

import (
	"context"

	"passport/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockLoginUsecase mocks usecase.LoginUsecase.
type MockLoginUsecase struct {
	mock.Mock
}

// NewMockLoginUsecase creates the mock and registers expectation checks.
func NewMockLoginUsecase(t testingT) *MockLoginUsecase {
	m := &MockLoginUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockLoginUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.LoginOutput), args.Error(1)
}

func (m *MockLoginUsecase) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)

	return args.Error(0)
}

// MockExternalLoginUsecase mocks usecase.ExternalLoginUsecase.
type MockExternalLoginUsecase struct {
	mock.Mock
}

// NewMockExternalLoginUsecase creates the mock and registers expectation checks.
func NewMockExternalLoginUsecase(t testingT) *MockExternalLoginUsecase {
	m := &MockExternalLoginUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockExternalLoginUsecase) Challenge(ctx context.Context, returnURL string) (*usecase.ChallengeOutput, error) {
	args := m.Called(ctx, returnURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.ChallengeOutput), args.Error(1)
}

func (m *MockExternalLoginUsecase) Callback(ctx context.Context, state, code string) (*usecase.CallbackOutput, error) {
	args := m.Called(ctx, state, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.CallbackOutput), args.Error(1)
}

// MockAccountUsecase mocks usecase.AccountUsecase.
type MockAccountUsecase struct {
	mock.Mock
}

// NewMockAccountUsecase creates the mock and registers expectation checks.
func NewMockAccountUsecase(t testingT) *MockAccountUsecase {
	m := &MockAccountUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAccountUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.UserInfo), args.Error(1)
}

func (m *MockAccountUsecase) ConfirmEmail(ctx context.Context, identityID uuid.UUID, code string) error {
	args := m.Called(ctx, identityID, code)

	return args.Error(0)
}

func (m *MockAccountUsecase) ResendConfirmation(ctx context.Context, email string) error {
	args := m.Called(ctx, email)

	return args.Error(0)
}

func (m *MockAccountUsecase) ForgotPassword(ctx context.Context, email string) error {
	args := m.Called(ctx, email)

	return args.Error(0)
}

func (m *MockAccountUsecase) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	args := m.Called(ctx, input)

	return args.Error(0)
}

func (m *MockAccountUsecase) GetInfo(ctx context.Context, identityID uuid.UUID) (*usecase.UserInfo, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.UserInfo), args.Error(1)
}

// MockTwoFactorUsecase mocks usecase.TwoFactorUsecase.
type MockTwoFactorUsecase struct {
	mock.Mock
}

// NewMockTwoFactorUsecase creates the mock and registers expectation checks.
func NewMockTwoFactorUsecase(t testingT) *MockTwoFactorUsecase {
	m := &MockTwoFactorUsecase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTwoFactorUsecase) Status(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TwoFactorStatus), args.Error(1)
}

func (m *MockTwoFactorUsecase) BeginSetup(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TwoFactorStatus), args.Error(1)
}

func (m *MockTwoFactorUsecase) Enable(ctx context.Context, identityID uuid.UUID, code string) (*usecase.TwoFactorStatus, error) {
	args := m.Called(ctx, identityID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TwoFactorStatus), args.Error(1)
}

func (m *MockTwoFactorUsecase) Disable(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)

	return args.Error(0)
}

func (m *MockTwoFactorUsecase) ResetSharedKey(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TwoFactorStatus), args.Error(1)
}

func (m *MockTwoFactorUsecase) RegenerateRecoveryCodes(ctx context.Context, identityID uuid.UUID) (*usecase.TwoFactorStatus, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.TwoFactorStatus), args.Error(1)
}

func (m *MockTwoFactorUsecase) ProvisioningQR(ctx context.Context, identityID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]byte), args.Error(1)
}
