// Package model contains the GORM persistence models mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityModel mirrors the 'identities' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type IdentityModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email               string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash        string    `gorm:"type:varchar(255)"`
	EmailConfirmed      bool      `gorm:"not null;default:false"`
	FailedLoginAttempts int       `gorm:"not null;default:0"`
	LastFailedLoginAt   *time.Time
	LockoutUntil        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Claims         []IdentityClaimModel       `gorm:"foreignKey:IdentityID"`
	ExternalLogins []ExternalLoginModel       `gorm:"foreignKey:IdentityID"`
	TwoFactor      *TwoFactorCredentialModel  `gorm:"foreignKey:IdentityID"`
	RecoveryCodes  []RecoveryCodeModel        `gorm:"foreignKey:IdentityID"`
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}

// IdentityClaimModel mirrors the 'identity_claims' table. One row per
// (identity, claim type); the value is replaced on upsert.
type IdentityClaimModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_identity_claim_type"`
	ClaimType  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_identity_claim_type"`
	ClaimValue string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (IdentityClaimModel) TableName() string {
	return "identity_claims"
}
