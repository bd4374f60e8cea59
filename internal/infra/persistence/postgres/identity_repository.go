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

// identityRepository implements the domain.IdentityRepository interface using GORM.
type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository is the constructor for identityRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewIdentityRepository(db *gorm.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

// FindByID retrieves a single identity by its unique ID, preloading its claims.
func (repo *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error) {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Preload("Claims").
		Where("id = ?", id).
		First(&identityM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.Wrap(err, "failed to find identity by id")
	}

	return toIdentityDomain(&identityM), nil
}

// FindByEmail retrieves a single identity by its normalized email.
func (repo *identityRepository) FindByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Preload("Claims").
		Where("email = ?", entity.NormalizeEmail(email)).
		First(&identityM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrIdentityNotFound
		}

		return nil, errors.Wrap(err, "failed to find identity by email")
	}

	return toIdentityDomain(&identityM), nil
}

// Create persists a new identity to the database.
func (repo *identityRepository) Create(ctx context.Context, identity *entity.Identity) error {
	identityM := fromIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required identity information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create identity")
	}

	// Propagate the generated ID and timestamps back onto the entity.
	identity.ID = identityM.ID
	identity.CreatedAt = identityM.CreatedAt
	identity.UpdatedAt = identityM.UpdatedAt

	return nil
}

// Update modifies an existing identity's core columns. Claims are managed
// through UpsertClaim, never through Update.
func (repo *identityRepository) Update(ctx context.Context, identity *entity.Identity) error {
	updates := map[string]any{
		"email":                 identity.Email,
		"password_hash":         identity.PasswordHash,
		"email_confirmed":       identity.EmailConfirmed,
		"failed_login_attempts": identity.FailedLoginAttempts,
		"last_failed_login_at":  identity.LastFailedLoginAt,
		"lockout_until":         identity.LockoutUntil,
	}

	result := repo.db.WithContext(ctx).
		Model(&model.IdentityModel{}).
		Where("id = ?", identity.ID).
		Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update identity")
	}
	if result.RowsAffected == 0 {
		return repository.ErrIdentityNotFound
	}

	return nil
}

// AcquireLock takes a row-level lock on the identity for the duration of the
// surrounding transaction.
func (repo *identityRepository) AcquireLock(ctx context.Context, id uuid.UUID) error {
	var identityM model.IdentityModel

	err := repo.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		First(&identityM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrIdentityNotFound
		}

		return errors.Wrap(err, "failed to lock identity row")
	}

	return nil
}

// UpsertClaim replaces any existing claim of the same type (remove-then-add,
// so the claim is never duplicated).
func (repo *identityRepository) UpsertClaim(ctx context.Context, identityID uuid.UUID, claimType, value string) error {
	if err := repo.db.WithContext(ctx).
		Where("identity_id = ? AND claim_type = ?", identityID, claimType).
		Delete(&model.IdentityClaimModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to remove existing claim")
	}

	claimM := &model.IdentityClaimModel{
		IdentityID: identityID,
		ClaimType:  claimType,
		ClaimValue: value,
	}
	if err := repo.db.WithContext(ctx).Create(claimM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrIdentityNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create claim")
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toIdentityDomain converts a GORM IdentityModel to a domain Identity entity.
func toIdentityDomain(data *model.IdentityModel) *entity.Identity {
	if data == nil {
		return nil
	}

	claims := make([]entity.Claim, 0, len(data.Claims))
	for _, claim := range data.Claims {
		claims = append(claims, entity.Claim{
			ID:         claim.ID,
			IdentityID: claim.IdentityID,
			Type:       claim.ClaimType,
			Value:      claim.ClaimValue,
		})
	}

	return &entity.Identity{
		ID:                  data.ID,
		Email:               data.Email,
		PasswordHash:        data.PasswordHash,
		EmailConfirmed:      data.EmailConfirmed,
		FailedLoginAttempts: data.FailedLoginAttempts,
		LastFailedLoginAt:   data.LastFailedLoginAt,
		LockoutUntil:        data.LockoutUntil,
		Claims:              claims,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

// fromIdentityDomain converts a domain Identity entity to a GORM IdentityModel for persistence.
func fromIdentityDomain(data *entity.Identity) *model.IdentityModel {
	if data == nil {
		return nil
	}

	return &model.IdentityModel{
		ID:                  data.ID,
		Email:               data.Email,
		PasswordHash:        data.PasswordHash,
		EmailConfirmed:      data.EmailConfirmed,
		FailedLoginAttempts: data.FailedLoginAttempts,
		LastFailedLoginAt:   data.LastFailedLoginAt,
		LockoutUntil:        data.LockoutUntil,
	}
}
