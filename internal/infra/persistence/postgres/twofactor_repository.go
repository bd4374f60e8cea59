package postgres

import (
	"context"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// twoFactorRepository implements the domain.TwoFactorRepository interface using GORM.
type twoFactorRepository struct {
	db *gorm.DB
}

// NewTwoFactorRepository is the constructor for twoFactorRepository.
func NewTwoFactorRepository(db *gorm.DB) repository.TwoFactorRepository {
	return &twoFactorRepository{db: db}
}

// FindCredential retrieves the credential owned by an identity.
func (repo *twoFactorRepository) FindCredential(ctx context.Context, identityID uuid.UUID) (*entity.TwoFactorCredential, error) {
	var credentialM model.TwoFactorCredentialModel

	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		First(&credentialM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTwoFactorNotFound
		}

		return nil, errors.Wrap(err, "failed to find two-factor credential")
	}

	return &entity.TwoFactorCredential{
		IdentityID: credentialM.IdentityID,
		Secret:     credentialM.Secret,
		Enabled:    credentialM.Enabled,
		CreatedAt:  credentialM.CreatedAt,
		UpdatedAt:  credentialM.UpdatedAt,
	}, nil
}

// SaveCredential inserts or updates the identity's credential.
func (repo *twoFactorRepository) SaveCredential(ctx context.Context, credential *entity.TwoFactorCredential) error {
	credentialM := &model.TwoFactorCredentialModel{
		IdentityID: credential.IdentityID,
		Secret:     credential.Secret,
		Enabled:    credential.Enabled,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret", "enabled", "updated_at"}),
		}).
		Create(credentialM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrIdentityNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to save two-factor credential")
	}

	return nil
}

// DeleteCredential removes the credential. Missing rows are not an error.
func (repo *twoFactorRepository) DeleteCredential(ctx context.Context, identityID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Delete(&model.TwoFactorCredentialModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete two-factor credential")
	}

	return nil
}

// ReplaceRecoveryCodes atomically swaps the identity's recovery code set.
func (repo *twoFactorRepository) ReplaceRecoveryCodes(ctx context.Context, identityID uuid.UUID, codes []*entity.RecoveryCode) error {
	if err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Delete(&model.RecoveryCodeModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear recovery codes")
	}

	if len(codes) == 0 {
		return nil
	}

	codeMs := make([]model.RecoveryCodeModel, 0, len(codes))
	for _, code := range codes {
		codeMs = append(codeMs, model.RecoveryCodeModel{
			IdentityID: identityID,
			CodeHash:   code.CodeHash,
		})
	}

	if err := repo.db.WithContext(ctx).Create(&codeMs).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrIdentityNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to insert recovery codes")
	}

	return nil
}

// ConsumeRecoveryCode deletes the code with the given hash. The delete's row
// count makes consumption exactly-once even under concurrent attempts.
func (repo *twoFactorRepository) ConsumeRecoveryCode(ctx context.Context, identityID uuid.UUID, codeHash string) (bool, error) {
	result := repo.db.WithContext(ctx).
		Where("identity_id = ? AND code_hash = ?", identityID, codeHash).
		Delete(&model.RecoveryCodeModel{})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to consume recovery code")
	}

	return result.RowsAffected == 1, nil
}

// CountRecoveryCodes returns how many unused codes remain.
func (repo *twoFactorRepository) CountRecoveryCodes(ctx context.Context, identityID uuid.UUID) (int, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.RecoveryCodeModel{}).
		Where("identity_id = ?", identityID).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to count recovery codes")
	}

	return int(count), nil
}

// DeleteRecoveryCodes removes every unused code for the identity.
func (repo *twoFactorRepository) DeleteRecoveryCodes(ctx context.Context, identityID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Delete(&model.RecoveryCodeModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete recovery codes")
	}

	return nil
}
