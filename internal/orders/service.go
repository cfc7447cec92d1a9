package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/cart"
	product "github.com/oakmart/storefront-backend/internal/products"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/pagination"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// allowedTransitions is the admissible status graph enforced at the service
// boundary. The aggregate itself records any move it is told to make.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered},
}

func transitionAllowed(from, to enums.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// orderStore is the slice of the orders repository the service needs.
type orderStore interface {
	NextSequence(ctx context.Context, day string) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.Order, int64, error)
}

// cartReader hands checkout the cart being converted.
type cartReader interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error
}

// inventoryAdjuster reserves and releases stock.
type inventoryAdjuster interface {
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	RestoreQuantity(ctx context.Context, id uuid.UUID, qty int) error
}

// txRunner executes a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// txStores rebinds the checkout collaborators to a transaction.
type txStores func(tx *gorm.DB) (orderStore, inventoryAdjuster, cartReader)

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Orders    orderStore
	Carts     cartReader
	Inventory inventoryAdjuster
	DB        txRunner
	TxStores  txStores
}

// Service exposes checkout and order lifecycle management.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, dto CheckoutDTO) (*models.Order, error)
	Get(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (OrderPageDTO, error)
	ListAll(ctx context.Context, filter ListFilter, page pagination.Params) (OrderPageDTO, error)
	Cancel(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, actor string, dto UpdateStatusDTO) (*models.Order, error)
	Refund(ctx context.Context, orderID uuid.UUID, actor string, dto RefundDTO) (*models.Order, error)
}

type service struct {
	orders    orderStore
	carts     cartReader
	inventory inventoryAdjuster
	db        txRunner
	txStores  txStores
	now       func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order store is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart reader is required")
	}
	if params.Inventory == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory adjuster is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	svc := &service{
		orders:    params.Orders,
		carts:     params.Carts,
		inventory: params.Inventory,
		db:        params.DB,
		now:       time.Now,
	}
	svc.txStores = params.TxStores
	if svc.txStores == nil {
		svc.txStores = func(tx *gorm.DB) (orderStore, inventoryAdjuster, cartReader) {
			return svc.orders, svc.inventory, svc.carts
		}
	}
	return svc, nil
}

// NewRepositoryTxStores rebinds the checkout collaborators to their concrete
// repositories on a transaction. cmd/api wires this in; tests substitute
// their own stores and skip it.
func NewRepositoryTxStores(orderRepo *Repository, productRepo *product.Repository, cartRepo *cart.Repository) txStores {
	return func(tx *gorm.DB) (orderStore, inventoryAdjuster, cartReader) {
		return orderRepo.WithTx(tx), productRepo.WithTx(tx), cartRepo.WithTx(tx)
	}
}

// Checkout converts the user's active cart into an order. Stock reservation,
// number minting, order creation and cart retirement run in one transaction.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, dto CheckoutDTO) (*models.Order, error) {
	if !dto.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}
	if dto.BillingAddress != nil && !dto.BillingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address is incomplete")
	}

	cart, err := s.carts.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart.UniqueItems() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	now := s.now()
	if cart.IsExpired(now) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart has expired")
	}
	cart.CalculateTotals()
	if cart.TotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total cannot be negative")
	}

	billing := dto.ShippingAddress
	if dto.BillingAddress != nil {
		billing = *dto.BillingAddress
	}

	var order *models.Order
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		ordersTx, inventoryTx, cartsTx := s.txStores(tx)

		for i := range cart.Items {
			item := &cart.Items[i]
			ok, err := inventoryTx.DecrementQuantity(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", item.Name))
			}
		}

		day := now.UTC().Format("060102")
		seq, err := ordersTx.NextSequence(ctx, day)
		if err != nil {
			return err
		}
		utc := now.UTC()
		number := models.FormatOrderNumber(utc.Year(), int(utc.Month()), utc.Day(), seq)

		order = buildOrder(cart, userID, number, billing, dto, now)
		if err := ordersTx.Create(ctx, order); err != nil {
			return err
		}

		return cartsTx.UpdateStatus(ctx, cart.ID, enums.CartStatusInactive)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}
	return order, nil
}

// buildOrder snapshots the cart into an immutable order record with its
// opening status event.
func buildOrder(cart *models.Cart, userID uuid.UUID, number string, billing types.Address, dto CheckoutDTO, now time.Time) *models.Order {
	orderID := uuid.New()

	items := make([]models.OrderItem, 0, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		items = append(items, models.OrderItem{
			ID:         uuid.New(),
			OrderID:    orderID,
			ProductID:  line.ProductID,
			Name:       line.Name,
			SKU:        line.SKU,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
			Variant:    line.Variant,
			TotalCents: line.TotalCents,
		})
	}

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     number,
		UserID:          userID,
		Items:           items,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		SubtotalCents:   cart.SubtotalCents,
		TaxCents:        cart.TaxCents,
		ShippingCents:   cart.ShippingCents,
		DiscountCents:   cart.DiscountCents,
		TotalCents:      cart.TotalCents,
		ShippingAddress: dto.ShippingAddress,
		BillingAddress:  billing,
		Note:            dto.Note,
	}
	if dto.PaymentMethod != "" {
		method := dto.PaymentMethod
		order.PaymentMethod = &method
	}
	order.StatusHistory = []models.OrderStatusEvent{{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    enums.OrderStatusPending,
		UpdatedBy: "system",
		CreatedAt: now,
	}}
	return order
}

// Get loads an order, restricting non-admin callers to their own orders.
func (s *service) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListMine returns one page of the caller's orders.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID, page pagination.Params) (OrderPageDTO, error) {
	page.Normalize()
	items, total, err := s.orders.List(ctx, ListFilter{UserID: &userID}, page)
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return OrderPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// ListAll returns one page of all orders for admin review.
func (s *service) ListAll(ctx context.Context, filter ListFilter, page pagination.Params) (OrderPageDTO, error) {
	page.Normalize()
	items, total, err := s.orders.List(ctx, filter, page)
	if err != nil {
		return OrderPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return OrderPageDTO{Items: items, Meta: page.MetaFor(total)}, nil
}

// Cancel lets the owner cancel an order that has not shipped, restoring the
// reserved stock.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Get(ctx, userID, false, orderID)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order in status %q cannot be cancelled", order.Status))
	}

	order.UpdateStatus(enums.OrderStatusCancelled, "cancelled by customer", userID.String(), s.now())
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}

	for i := range order.Items {
		item := &order.Items[i]
		if err := s.inventory.RestoreQuantity(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
		}
	}
	return order, nil
}

// UpdateStatus moves an order along the admissible status graph.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, actor string, dto UpdateStatusDTO) (*models.Order, error) {
	if !dto.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", dto.Status))
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(order.Status, dto.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %q to %q", order.Status, dto.Status))
	}

	if dto.TrackingNumber != nil {
		order.TrackingNumber = dto.TrackingNumber
	}
	order.UpdateStatus(dto.Status, dto.Note, actor, s.now())

	if dto.Status == enums.OrderStatusCancelled {
		for i := range order.Items {
			item := &order.Items[i]
			if err := s.inventory.RestoreQuantity(ctx, item.ProductID, item.Quantity); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

// Refund records a refund against a paid order. A zero amount refunds the
// remaining balance.
func (s *service) Refund(ctx context.Context, orderID uuid.UUID, actor string, dto RefundDTO) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	continuing := order.PaymentStatus == enums.PaymentStatusPartiallyRefunded && order.RemainingRefundable() > 0
	if !order.CanBeRefunded() && !continuing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not refundable")
	}

	amount := dto.AmountCents
	if amount == 0 {
		amount = order.RemainingRefundable()
	}
	if amount <= 0 || amount > order.RemainingRefundable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds remaining balance")
	}

	order.ProcessRefund(amount, dto.Reason, actor, s.now())
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
