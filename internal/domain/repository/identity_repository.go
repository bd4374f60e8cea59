// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrIdentityNotFound is a domain-specific error returned when an identity is not found.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository defines the standard operations for identity persistence.
// The application layer depends on this interface, not the concrete implementation.
type IdentityRepository interface {
	// FindByID retrieves a single identity (with claims) by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Identity, error)

	// FindByEmail retrieves a single identity by email. Lookup is
	// case-insensitive; implementations match on the normalized form.
	FindByEmail(ctx context.Context, email string) (*entity.Identity, error)

	// Create persists a new identity to the storage.
	Create(ctx context.Context, identity *entity.Identity) error

	// Update modifies an existing identity (core columns, not claims).
	Update(ctx context.Context, identity *entity.Identity) error

	// AcquireLock takes a row-level lock on the identity for the duration of
	// the surrounding transaction. Callers use it to serialize conflicting
	// writes such as concurrent failed-login increments or duplicate
	// two-factor setup requests.
	AcquireLock(ctx context.Context, id uuid.UUID) error

	// UpsertClaim replaces any existing claim of the same type on the
	// identity with the given value (remove-then-add, never duplicated).
	UpsertClaim(ctx context.Context, identityID uuid.UUID, claimType, value string) error
}
