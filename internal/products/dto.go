package product

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// CreateProductInput carries an admin create request after validation.
type CreateProductInput struct {
	Name                string
	SKU                 string
	Description         *string
	CategoryID          *uuid.UUID
	PriceCents          int
	CompareAtPriceCents *int
	Quantity            int
	LowStockThreshold   *int
	AllowBackorder      bool
	TrackQuantity       *bool
	Status              enums.ProductStatus
	IsFeatured          bool
}

// UpdateProductInput carries partial edits, nil fields stay untouched.
type UpdateProductInput struct {
	Name                *string
	SKU                 *string
	Description         *string
	CategoryID          *uuid.UUID
	ClearCategory       bool
	PriceCents          *int
	CompareAtPriceCents *int
	Quantity            *int
	LowStockThreshold   *int
	AllowBackorder      *bool
	TrackQuantity       *bool
	Status              *enums.ProductStatus
	IsFeatured          *bool
}

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	CategoryIDs []uuid.UUID
	Status      *enums.ProductStatus
	Search      string
	MinPrice    *int
	MaxPrice    *int
	Featured    *bool
	InStock     bool
	Sort        string
}

// ProductPageDTO is one page of catalog results.
type ProductPageDTO struct {
	Items []models.Product
	Meta  pagination.Meta
}
