// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"passport/internal/domain/repository"

	"gorm.io/gorm"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory implements the domain's RepositoryFactory interface.
// It holds a specific GORM transaction object and uses it to create
// repository instances that are bound to that single transaction.
type gormRepositoryFactory struct {
	tx *gorm.DB // In GORM, a transaction object is also a *gorm.DB
}

// IdentityRepo returns an IdentityRepository bound to the current transaction.
func (f *gormRepositoryFactory) IdentityRepo() repository.IdentityRepository {
	return NewIdentityRepository(f.tx)
}

// ExternalLoginRepo returns an ExternalLoginRepository bound to the current transaction.
func (f *gormRepositoryFactory) ExternalLoginRepo() repository.ExternalLoginRepository {
	return NewExternalLoginRepository(f.tx)
}

// TwoFactorRepo returns a TwoFactorRepository bound to the current transaction.
func (f *gormRepositoryFactory) TwoFactorRepo() repository.TwoFactorRepository {
	return NewTwoFactorRepository(f.tx)
}

// NewTransactionManager is the constructor for gormTransactionManager.
// This function will be used as an Fx provider.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs fn inside one database transaction. Lockout counters, 2FA
// state and the create-then-bind external login sequence all rely on this:
// any error rolls the whole unit back, so no partial identity or binding
// survives a mid-flow failure.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{tx: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
