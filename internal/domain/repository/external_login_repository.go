package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrExternalLoginNotFound is returned when no binding exists for a provider key.
var ErrExternalLoginNotFound = errors.New("external login binding not found")

// ExternalLoginRepository defines the operations for external login bindings.
type ExternalLoginRepository interface {
	// Create persists a new binding. The (provider, provider key) pair is
	// unique; a duplicate insert surfaces as a conflict.
	Create(ctx context.Context, binding *entity.ExternalLogin) error

	// Find retrieves the binding for a provider and its subject key.
	Find(ctx context.Context, provider entity.ProviderType, providerKey string) (*entity.ExternalLogin, error)

	// ListByIdentityID returns all bindings held by one identity.
	ListByIdentityID(ctx context.Context, identityID uuid.UUID) ([]*entity.ExternalLogin, error)

	// Delete removes a binding by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}
