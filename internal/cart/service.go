package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// cartStore is the slice of the cart repository the service needs.
type cartStore interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindActiveBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
}

// productLoader resolves catalog entries for snapshotting and validation.
type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Carts    cartStore
	Products productLoader
	Config   config.CartConfig
}

// Service exposes cart reads and mutations for users and guest sessions.
type Service interface {
	Get(ctx context.Context, owner Owner) (*models.Cart, error)
	AddItem(ctx context.Context, owner Owner, dto AddItemDTO) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, owner Owner) (*models.Cart, error)
	ApplyDiscount(ctx context.Context, owner Owner, dto ApplyDiscountDTO) (*models.Cart, error)
	RemoveDiscount(ctx context.Context, owner Owner) (*models.Cart, error)
	Validate(ctx context.Context, owner Owner) ([]Issue, error)
	Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, error)
}

type service struct {
	carts    cartStore
	products productLoader
	cfg      config.CartConfig
	now      func() time.Time
}

// NewService builds the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product loader is required")
	}
	return &service{
		carts:    params.Carts,
		products: params.Products,
		cfg:      params.Config,
		now:      time.Now,
	}, nil
}

// Get returns the owner's active cart, creating an empty one on first touch.
func (s *service) Get(ctx context.Context, owner Owner) (*models.Cart, error) {
	return s.getOrCreate(ctx, owner)
}

// AddItem snapshots the product into the cart and recomputes totals.
func (s *service) AddItem(ctx context.Context, owner Owner, dto AddItemDTO) (*models.Cart, error) {
	if dto.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadSellable(ctx, dto.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.InStock(dto.Quantity) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("only %d left in stock", product.Quantity))
	}

	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	cart.AddItem(models.AddItemParams{
		ProductID:   product.ID,
		Name:        product.Name,
		SKU:         product.SKU,
		PriceCents:  product.PriceCents,
		Quantity:    dto.Quantity,
		Variant:     dto.Variant,
		MaxQuantity: s.cfg.MaxLineQty,
	})

	return s.persist(ctx, cart)
}

// UpdateItemQuantity sets a line's quantity, removing it at zero.
func (s *service) UpdateItemQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, qty int) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := cart.UpdateItemQuantity(itemID, qty); err != nil {
		if errors.Is(err, models.ErrCartItemNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}

	return s.persist(ctx, cart)
}

// RemoveItem drops a line from the cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(itemID)
	return s.persist(ctx, cart)
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return s.persist(ctx, cart)
}

// ApplyDiscount validates and attaches a discount to the cart.
func (s *service) ApplyDiscount(ctx context.Context, owner Owner, dto ApplyDiscountDTO) (*models.Cart, error) {
	if dto.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code is required")
	}
	switch dto.Type {
	case enums.DiscountTypePercentage:
		if dto.Value < 1 || dto.Value > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage discount must be between 1 and 100")
		}
	case enums.DiscountTypeFixed:
		if dto.Value <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "fixed discount must be positive")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", dto.Type))
	}

	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.ApplyDiscount(dto.Code, dto.Type, dto.Value)
	return s.persist(ctx, cart)
}

// RemoveDiscount detaches any applied discount.
func (s *service) RemoveDiscount(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	cart.RemoveDiscount()
	return s.persist(ctx, cart)
}

// Validate checks every line against the live catalog and reports drift.
// The cart itself is left untouched.
func (s *service) Validate(ctx context.Context, owner Owner) ([]Issue, error) {
	cart, err := s.getOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}
	issues, err := s.validateItems(ctx, cart)
	if err != nil {
		return nil, err
	}
	if _, err := s.persist(ctx, cart); err != nil {
		return nil, err
	}
	return issues, nil
}

// validateItems re-checks every line against the live catalog. Unavailable
// lines are flagged in place, quantities are never adjusted, only the
// availability flag and the quantity ceiling move.
func (s *service) validateItems(ctx context.Context, cart *models.Cart) ([]Issue, error) {
	issues := []Issue{}
	for i := range cart.Items {
		item := &cart.Items[i]
		item.Available = true
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				item.Available = false
				issues = append(issues, Issue{
					ItemID:    item.ID,
					ProductID: item.ProductID,
					Kind:      IssueProductMissing,
					Message:   fmt.Sprintf("%s is no longer available", item.Name),
				})
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if product.Status != enums.ProductStatusActive {
			item.Available = false
			issues = append(issues, Issue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssueProductInactive,
				Message:   fmt.Sprintf("%s is no longer for sale", item.Name),
			})
			continue
		}
		if !product.InStock(item.Quantity) {
			item.Available = false
			item.MaxQuantity = product.Quantity
			issues = append(issues, Issue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssueInsufficientStock,
				Message:   fmt.Sprintf("only %d of %s left in stock", product.Quantity, item.Name),
			})
		}
		if product.PriceCents != item.PriceCents {
			issues = append(issues, Issue{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				Kind:      IssuePriceChanged,
				Message:   fmt.Sprintf("price of %s changed since it was added", item.Name),
			})
		}
	}
	return issues, nil
}

// Merge folds a guest session cart into the user's cart on login. The
// session cart is marked merged and stops being served.
func (s *service) Merge(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Cart, error) {
	if userID == uuid.Nil || sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and session id are required")
	}

	sessionCart, err := s.carts.FindActiveBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.getOrCreate(ctx, Owner{UserID: &userID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session cart")
	}

	userCart, err := s.carts.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No user cart yet: adopt the session cart in place, lines,
			// prices and discount intact.
			sessionCart.UserID = &userID
			sessionCart.SessionID = nil
			return s.persist(ctx, sessionCart)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user cart")
	}

	userCart.MergeFrom(sessionCart)
	if err := s.carts.UpdateStatus(ctx, sessionCart.ID, enums.CartStatusMerged); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retire session cart")
	}
	return s.persist(ctx, userCart)
}

func (s *service) getOrCreate(ctx context.Context, owner Owner) (*models.Cart, error) {
	if owner.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	var (
		cart *models.Cart
		err  error
	)
	if owner.UserID != nil {
		cart, err = s.carts.FindActiveByUser(ctx, *owner.UserID)
	} else {
		cart, err = s.carts.FindActiveBySession(ctx, *owner.SessionID)
	}
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	cart = &models.Cart{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		SessionID:  owner.SessionID,
		Status:     enums.CartStatusActive,
		TaxRateBPS: s.cfg.TaxRateBPS,
	}
	cart.Touch(s.now(), s.cfg.TTL)
	if err := s.carts.Create(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

// persist saves the cart and slides its expiry window forward.
func (s *service) persist(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.Touch(s.now(), s.cfg.TTL)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) loadSellable(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is not for sale")
	}
	return product, nil
}
