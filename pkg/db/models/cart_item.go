package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/types"
)

// CartItem is one line in a cart. Name, SKU and price are snapshotted from
// the product at add time so a later catalog edit does not reprice the line.
type CartItem struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID     `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID   uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Name        string        `gorm:"column:name;not null"`
	SKU         string        `gorm:"column:sku;not null"`
	PriceCents  int           `gorm:"column:price_cents;not null"`
	Quantity    int           `gorm:"column:quantity;not null"`
	Variant     types.Variant `gorm:"column:variant;type:jsonb;serializer:json"`
	TotalCents  int           `gorm:"column:total_cents;not null"`
	MaxQuantity int           `gorm:"column:max_quantity;not null;default:0"`
	Available   bool          `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) recalc() {
	i.TotalCents = i.PriceCents * i.Quantity
}
