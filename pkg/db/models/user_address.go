package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/types"
)

// UserAddress is one entry in a user's address book.
type UserAddress struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID     `gorm:"column:user_id;type:uuid;not null;index"`
	Label     string        `gorm:"column:label;not null;default:'home'"`
	Address   types.Address `gorm:"column:address;type:jsonb;serializer:json"`
	IsDefault bool          `gorm:"column:is_default;not null;default:false"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
