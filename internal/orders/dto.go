package orders

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/pagination"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// CheckoutDTO carries a checkout request after validation. BillingAddress
// falls back to the shipping address when absent.
type CheckoutDTO struct {
	ShippingAddress types.Address
	BillingAddress  *types.Address
	PaymentMethod   string
	Note            *string
}

// ListFilter narrows an admin order listing.
type ListFilter struct {
	UserID        *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// OrderPageDTO is one page of orders.
type OrderPageDTO struct {
	Items []models.Order
	Meta  pagination.Meta
}

// UpdateStatusDTO carries an admin status move.
type UpdateStatusDTO struct {
	Status         enums.OrderStatus
	Note           string
	TrackingNumber *string
}

// RefundDTO carries an admin refund request. A zero amount refunds whatever
// remains on the order.
type RefundDTO struct {
	AmountCents int
	Reason      string
}
