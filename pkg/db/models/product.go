package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// Product is a catalog entry with inventory counters and a denormalized
// rating summary maintained by the reviews service.
type Product struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                string              `gorm:"column:name;not null"`
	Slug                string              `gorm:"column:slug;not null;uniqueIndex"`
	SKU                 string              `gorm:"column:sku;not null;uniqueIndex"`
	Description         *string             `gorm:"column:description"`
	CategoryID          *uuid.UUID          `gorm:"column:category_id;type:uuid;index"`
	PriceCents          int                 `gorm:"column:price_cents;not null"`
	CompareAtPriceCents *int                `gorm:"column:compare_at_price_cents"`
	Quantity            int                 `gorm:"column:quantity;not null;default:0"`
	LowStockThreshold   int                 `gorm:"column:low_stock_threshold;not null;default:5"`
	AllowBackorder      bool                `gorm:"column:allow_backorder;not null;default:false"`
	TrackQuantity       bool                `gorm:"column:track_quantity;not null;default:true"`
	Status              enums.ProductStatus `gorm:"column:status;not null;default:'draft'"`
	IsFeatured          bool                `gorm:"column:is_featured;not null;default:false"`
	RatingAverage       float64             `gorm:"column:rating_average;not null;default:0"`
	RatingCount         int                 `gorm:"column:rating_count;not null;default:0"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether the requested quantity can currently be fulfilled.
// Untracked products and backorderable products always report true.
func (p *Product) InStock(qty int) bool {
	if !p.TrackQuantity || p.AllowBackorder {
		return true
	}
	return p.Quantity >= qty
}

// IsLowStock reports whether tracked inventory dropped to the threshold.
func (p *Product) IsLowStock() bool {
	return p.TrackQuantity && p.Quantity <= p.LowStockThreshold
}

// ApplyRating overwrites the denormalized rating summary.
func (p *Product) ApplyRating(average float64, count int) {
	p.RatingAverage = average
	p.RatingCount = count
}
