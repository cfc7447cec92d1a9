package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/types"
)

// OrderItem is an immutable snapshot of a cart line at checkout time.
type OrderItem struct {
	ID         uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID     `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Name       string        `gorm:"column:name;not null"`
	SKU        string        `gorm:"column:sku;not null"`
	PriceCents int           `gorm:"column:price_cents;not null"`
	Quantity   int           `gorm:"column:quantity;not null"`
	Variant    types.Variant `gorm:"column:variant;type:jsonb;serializer:json"`
	TotalCents int           `gorm:"column:total_cents;not null"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
}
