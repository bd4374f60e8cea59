// Package repository contains hand-maintained testify mocks for the
// persistence interfaces.
package repository

import (
	"context"

	"passport/internal/domain/entity"
	"passport/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockTransactionManager is a mock for repository.TransactionManager.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager(t testingT) *MockTransactionManager {
	m := &MockTransactionManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)
	if rf, ok := args.Get(0).(func(context.Context, func(repository.RepositoryFactory) error) error); ok {
		return rf(ctx, fn)
	}

	return args.Error(0)
}

// MockRepositoryFactory is a mock for repository.RepositoryFactory.
type MockRepositoryFactory struct {
	mock.Mock
}

func NewMockRepositoryFactory(t testingT) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRepositoryFactory) IdentityRepo() repository.IdentityRepository {
	args := m.Called()

	return args.Get(0).(repository.IdentityRepository)
}

func (m *MockRepositoryFactory) ExternalLoginRepo() repository.ExternalLoginRepository {
	args := m.Called()

	return args.Get(0).(repository.ExternalLoginRepository)
}

func (m *MockRepositoryFactory) TwoFactorRepo() repository.TwoFactorRepository {
	args := m.Called()

	return args.Get(0).(repository.TwoFactorRepository)
}

// MockIdentityRepository is a mock for repository.IdentityRepository.
type MockIdentityRepository struct {
	mock.Mock
}

func NewMockIdentityRepository(t testingT) *MockIdentityRepository {
	m := &MockIdentityRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockIdentityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Identity), args.Error(1)
}

func (m *MockIdentityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Identity), args.Error(1)
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	args := m.Called(ctx, identity)

	return args.Error(0)
}

func (m *MockIdentityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	args := m.Called(ctx, identity)

	return args.Error(0)
}

func (m *MockIdentityRepository) AcquireLock(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *MockIdentityRepository) UpsertClaim(ctx context.Context, identityID uuid.UUID, claimType, value string) error {
	args := m.Called(ctx, identityID, claimType, value)

	return args.Error(0)
}

// MockExternalLoginRepository is a mock for repository.ExternalLoginRepository.
type MockExternalLoginRepository struct {
	mock.Mock
}

func NewMockExternalLoginRepository(t testingT) *MockExternalLoginRepository {
	m := &MockExternalLoginRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockExternalLoginRepository) Create(ctx context.Context, binding *entity.ExternalLogin) error {
	args := m.Called(ctx, binding)

	return args.Error(0)
}

func (m *MockExternalLoginRepository) Find(ctx context.Context, provider entity.ProviderType, providerKey string) (*entity.ExternalLogin, error) {
	args := m.Called(ctx, provider, providerKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.ExternalLogin), args.Error(1)
}

func (m *MockExternalLoginRepository) ListByIdentityID(ctx context.Context, identityID uuid.UUID) ([]*entity.ExternalLogin, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.ExternalLogin), args.Error(1)
}

func (m *MockExternalLoginRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// MockTwoFactorRepository is a mock for repository.TwoFactorRepository.
type MockTwoFactorRepository struct {
	mock.Mock
}

func NewMockTwoFactorRepository(t testingT) *MockTwoFactorRepository {
	m := &MockTwoFactorRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTwoFactorRepository) FindCredential(ctx context.Context, identityID uuid.UUID) (*entity.TwoFactorCredential, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.TwoFactorCredential), args.Error(1)
}

func (m *MockTwoFactorRepository) SaveCredential(ctx context.Context, credential *entity.TwoFactorCredential) error {
	args := m.Called(ctx, credential)

	return args.Error(0)
}

func (m *MockTwoFactorRepository) DeleteCredential(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)

	return args.Error(0)
}

func (m *MockTwoFactorRepository) ReplaceRecoveryCodes(ctx context.Context, identityID uuid.UUID, codes []*entity.RecoveryCode) error {
	args := m.Called(ctx, identityID, codes)

	return args.Error(0)
}

func (m *MockTwoFactorRepository) ConsumeRecoveryCode(ctx context.Context, identityID uuid.UUID, codeHash string) (bool, error) {
	args := m.Called(ctx, identityID, codeHash)

	return args.Bool(0), args.Error(1)
}

func (m *MockTwoFactorRepository) CountRecoveryCodes(ctx context.Context, identityID uuid.UUID) (int, error) {
	args := m.Called(ctx, identityID)

	return args.Int(0), args.Error(1)
}

func (m *MockTwoFactorRepository) DeleteRecoveryCodes(ctx context.Context, identityID uuid.UUID) error {
	args := m.Called(ctx, identityID)

	return args.Error(0)
}
