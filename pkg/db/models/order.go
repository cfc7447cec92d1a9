package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// Order is the immutable record of a checkout. Line and address contents are
// snapshots, only status, payment state and the refund fields move after
// creation, and every status move appends to StatusHistory.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Status          enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod   *string             `gorm:"column:payment_method"`
	SubtotalCents   int                 `gorm:"column:subtotal_cents;not null"`
	TaxCents        int                 `gorm:"column:tax_cents;not null;default:0"`
	ShippingCents   int                 `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCents   int                 `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress  types.Address       `gorm:"column:billing_address;type:jsonb;serializer:json"`
	StatusHistory   []OrderStatusEvent  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Note            *string             `gorm:"column:note"`
	TrackingNumber  *string             `gorm:"column:tracking_number"`
	RefundedCents   int                 `gorm:"column:refunded_cents;not null;default:0"`
	RefundReason    *string             `gorm:"column:refund_reason"`
	RefundedAt      *time.Time          `gorm:"column:refunded_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// CanBeCancelled reports whether the order is still early enough to cancel.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.OrderStatusProcessing:
		return true
	}
	return false
}

// CanBeRefunded reports whether a refund can start: the order was paid in
// full and has been delivered. Follow-up refunds against a remaining balance
// are admitted separately at the service boundary.
func (o *Order) CanBeRefunded() bool {
	return o.PaymentStatus == enums.PaymentStatusPaid && o.Status == enums.OrderStatusDelivered
}

// UpdateStatus moves the order to the given status and appends a history
// event. The move itself is unconditional, admissibility checks such as
// CanBeCancelled live at the service boundary.
func (o *Order) UpdateStatus(status enums.OrderStatus, note string, updatedBy string, now time.Time) {
	o.Status = status
	switch status {
	case enums.OrderStatusCancelled:
		at := now
		o.CancelledAt = &at
	case enums.OrderStatusDelivered:
		at := now
		o.DeliveredAt = &at
	}
	event := OrderStatusEvent{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		UpdatedBy: updatedBy,
		CreatedAt: now,
	}
	if note != "" {
		event.Note = &note
	}
	o.StatusHistory = append(o.StatusHistory, event)
}

// ProcessRefund records a refund of amountCents. Payment state reflects how
// much of the total has come back, the order status is forced to refunded
// either way.
func (o *Order) ProcessRefund(amountCents int, reason string, updatedBy string, now time.Time) {
	o.RefundedCents += amountCents
	at := now
	o.RefundedAt = &at
	if reason != "" {
		o.RefundReason = &reason
	}
	if o.RefundedCents >= o.TotalCents {
		o.PaymentStatus = enums.PaymentStatusRefunded
	} else {
		o.PaymentStatus = enums.PaymentStatusPartiallyRefunded
	}
	o.UpdateStatus(enums.OrderStatusRefunded, reason, updatedBy, now)
}

// RemainingRefundable returns how many cents are still refundable.
func (o *Order) RemainingRefundable() int {
	remaining := o.TotalCents - o.RefundedCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
