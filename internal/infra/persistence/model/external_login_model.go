package model

import (
	"time"

	"github.com/google/uuid"
)

// ExternalLoginModel mirrors the 'external_logins' table. The
// (provider, provider_key) pair is unique across all identities.
type ExternalLoginModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	IdentityID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider    string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_key"`
	ProviderKey string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_key"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ExternalLoginModel) TableName() string {
	return "external_logins"
}
