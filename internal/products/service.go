package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
)

// productStore is the slice of the catalog repository the service needs.
type productStore interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, product *models.Product) error
	Save(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// categoryResolver checks category assignments and keeps product counts fresh.
type categoryResolver interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	AdjustProductCount(ctx context.Context, id uuid.UUID, delta int) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Products   productStore
	Categories categoryResolver
}

// Service exposes catalog reads and admin catalog management.
type Service interface {
	List(ctx context.Context, filter ListFilter, page pagination.Params) (ProductPageDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	products   productStore
	categories categoryResolver
}

// NewService builds the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product store is required")
	}
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category resolver is required")
	}
	return &service{products: params.Products, categories: params.Categories}, nil
}

// List returns one page of products. Public callers are pinned to active
// products by the controller, admin listings may pass any status.
func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (ProductPageDTO, error) {
	page.Normalize()
	items, total, err := s.products.List(ctx, filter, page)
	if err != nil {
		return ProductPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return ProductPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// Get loads one product by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// GetBySlug loads one product by its URL slug.
func (s *service) GetBySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	product, err := s.products.FindBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Create inserts a catalog entry, deriving a unique slug from the name.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product status %q", input.Status))
	}
	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	productSlug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:                  uuid.New(),
		Name:                strings.TrimSpace(input.Name),
		Slug:                productSlug,
		SKU:                 strings.TrimSpace(input.SKU),
		Description:         input.Description,
		CategoryID:          input.CategoryID,
		PriceCents:          input.PriceCents,
		CompareAtPriceCents: input.CompareAtPriceCents,
		Quantity:            input.Quantity,
		LowStockThreshold:   5,
		AllowBackorder:      input.AllowBackorder,
		TrackQuantity:       true,
		Status:              enums.ProductStatusDraft,
		IsFeatured:          input.IsFeatured,
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.TrackQuantity != nil {
		product.TrackQuantity = *input.TrackQuantity
	}
	if input.Status != "" {
		product.Status = input.Status
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	if product.CategoryID != nil && product.Status == enums.ProductStatusActive {
		if err := s.categories.AdjustProductCount(ctx, *product.CategoryID, 1); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump category count")
		}
	}
	return product, nil
}

// Update applies partial edits, keeping category product counts in step when
// the assignment or visibility changes.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prevCategory := product.CategoryID
	prevVisible := product.Status == enums.ProductStatusActive

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product status %q", *input.Status))
	}

	applyUpdate(product, input)

	if input.Name != nil && slug.Make(product.Name) != product.Slug {
		productSlug, err := s.uniqueSlug(ctx, product.Name)
		if err != nil {
			return nil, err
		}
		product.Slug = productSlug
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
	}

	nowVisible := product.Status == enums.ProductStatusActive
	if err := s.reconcileCounts(ctx, prevCategory, product.CategoryID, prevVisible, nowVisible); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a catalog entry and releases its category count.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if product.CategoryID != nil && product.Status == enums.ProductStatusActive {
		if err := s.categories.AdjustProductCount(ctx, *product.CategoryID, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release category count")
		}
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ClearCategory {
		product.CategoryID = nil
	} else if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.CompareAtPriceCents != nil {
		product.CompareAtPriceCents = input.CompareAtPriceCents
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.AllowBackorder != nil {
		product.AllowBackorder = *input.AllowBackorder
	}
	if input.TrackQuantity != nil {
		product.TrackQuantity = *input.TrackQuantity
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
}

func (s *service) reconcileCounts(ctx context.Context, prevCategory, nextCategory *uuid.UUID, prevVisible, nowVisible bool) error {
	decrement := prevVisible && prevCategory != nil
	increment := nowVisible && nextCategory != nil
	if decrement && increment && *prevCategory == *nextCategory {
		return nil
	}
	if decrement {
		if err := s.categories.AdjustProductCount(ctx, *prevCategory, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release category count")
		}
	}
	if increment {
		if err := s.categories.AdjustProductCount(ctx, *nextCategory, 1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump category count")
		}
	}
	return nil
}

func (s *service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	exists, err := s.categories.Exists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
	}
	return nil
}

// uniqueSlug slugifies the name, shifting to a numbered suffix on collision.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name produces an empty slug")
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.products.SlugExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
