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
)

// externalLoginRepository implements the domain.ExternalLoginRepository interface using GORM.
type externalLoginRepository struct {
	db *gorm.DB
}

// NewExternalLoginRepository is the constructor for externalLoginRepository.
func NewExternalLoginRepository(db *gorm.DB) repository.ExternalLoginRepository {
	return &externalLoginRepository{db: db}
}

// Create persists a new external login binding.
func (repo *externalLoginRepository) Create(ctx context.Context, binding *entity.ExternalLogin) error {
	bindingM := &model.ExternalLoginModel{
		IdentityID:  binding.IdentityID,
		Provider:    string(binding.Provider),
		ProviderKey: binding.ProviderKey,
	}

	if err := repo.db.WithContext(ctx).Create(bindingM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("external login already bound")
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrIdentityNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create external login")
	}

	binding.ID = bindingM.ID
	binding.CreatedAt = bindingM.CreatedAt

	return nil
}

// Find retrieves the binding for a provider and its subject key.
func (repo *externalLoginRepository) Find(ctx context.Context, provider entity.ProviderType, providerKey string) (*entity.ExternalLogin, error) {
	var bindingM model.ExternalLoginModel

	err := repo.db.WithContext(ctx).
		Where("provider = ? AND provider_key = ?", string(provider), providerKey).
		First(&bindingM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrExternalLoginNotFound
		}

		return nil, errors.Wrap(err, "failed to find external login")
	}

	return toExternalLoginDomain(&bindingM), nil
}

// ListByIdentityID returns all bindings held by one identity.
func (repo *externalLoginRepository) ListByIdentityID(ctx context.Context, identityID uuid.UUID) ([]*entity.ExternalLogin, error) {
	var bindingMs []model.ExternalLoginModel

	err := repo.db.WithContext(ctx).
		Where("identity_id = ?", identityID).
		Order("created_at ASC").
		Find(&bindingMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list external logins")
	}

	bindings := make([]*entity.ExternalLogin, 0, len(bindingMs))
	for i := range bindingMs {
		bindings = append(bindings, toExternalLoginDomain(&bindingMs[i]))
	}

	return bindings, nil
}

// Delete removes a binding by its ID.
func (repo *externalLoginRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ExternalLoginModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete external login")
	}
	if result.RowsAffected == 0 {
		return repository.ErrExternalLoginNotFound
	}

	return nil
}

// toExternalLoginDomain converts a GORM ExternalLoginModel to a domain ExternalLogin entity.
func toExternalLoginDomain(data *model.ExternalLoginModel) *entity.ExternalLogin {
	return &entity.ExternalLogin{
		ID:          data.ID,
		IdentityID:  data.IdentityID,
		Provider:    entity.ProviderType(data.Provider),
		ProviderKey: data.ProviderKey,
		CreatedAt:   data.CreatedAt,
	}
}
