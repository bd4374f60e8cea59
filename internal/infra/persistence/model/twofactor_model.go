package model

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorCredentialModel mirrors the 'two_factor_credentials' table.
// At most one row exists per identity.
type TwoFactorCredentialModel struct {
	IdentityID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Secret     string    `gorm:"type:varchar(255);not null"`
	Enabled    bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (TwoFactorCredentialModel) TableName() string {
	return "two_factor_credentials"
}

// RecoveryCodeModel mirrors the 'two_factor_recovery_codes' table. Rows are
// deleted on use, so presence means the code is still spendable.
type RecoveryCodeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	IdentityID uuid.UUID `gorm:"type:uuid;not null;index"`
	CodeHash   string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (RecoveryCodeModel) TableName() string {
	return "two_factor_recovery_codes"
}
