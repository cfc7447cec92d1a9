package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

func paidOrder(status enums.OrderStatus, totalCents int) *Order {
	return &Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD2609010001",
		UserID:        uuid.New(),
		Status:        status,
		PaymentStatus: enums.PaymentStatusPaid,
		TotalCents:    totalCents,
	}
}

func TestOrderCanBeCancelled(t *testing.T) {
	cancellable := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
	}
	for _, status := range cancellable {
		assert.True(t, paidOrder(status, 1000).CanBeCancelled(), status.String())
	}
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusRefunded,
	} {
		assert.False(t, paidOrder(status, 1000).CanBeCancelled(), status.String())
	}
}

func TestOrderCanBeRefundedRequiresPaidAndDelivered(t *testing.T) {
	order := paidOrder(enums.OrderStatusDelivered, 1000)
	assert.True(t, order.CanBeRefunded())

	order.PaymentStatus = enums.PaymentStatusPending
	assert.False(t, order.CanBeRefunded())

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
	} {
		assert.False(t, paidOrder(status, 1000).CanBeRefunded(), status.String())
	}
}

func TestOrderUpdateStatusAppendsHistory(t *testing.T) {
	order := paidOrder(enums.OrderStatusPending, 1000)
	now := time.Now()

	order.UpdateStatus(enums.OrderStatusConfirmed, "payment captured", "admin", now)
	order.UpdateStatus(enums.OrderStatusShipped, "", "admin", now.Add(time.Hour))

	require.Len(t, order.StatusHistory, 2)
	assert.Equal(t, enums.OrderStatusConfirmed, order.StatusHistory[0].Status)
	require.NotNil(t, order.StatusHistory[0].Note)
	assert.Equal(t, "payment captured", *order.StatusHistory[0].Note)
	assert.Nil(t, order.StatusHistory[1].Note)
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
}

func TestOrderUpdateStatusStampsCancelledAndDelivered(t *testing.T) {
	now := time.Now()

	cancelled := paidOrder(enums.OrderStatusPending, 1000)
	cancelled.UpdateStatus(enums.OrderStatusCancelled, "", "customer", now)
	require.NotNil(t, cancelled.CancelledAt)

	delivered := paidOrder(enums.OrderStatusShipped, 1000)
	delivered.UpdateStatus(enums.OrderStatusDelivered, "", "carrier", now)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestOrderProcessRefundFull(t *testing.T) {
	order := paidOrder(enums.OrderStatusDelivered, 2500)
	now := time.Now()

	order.ProcessRefund(2500, "damaged in transit", "admin", now)

	assert.Equal(t, enums.PaymentStatusRefunded, order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusRefunded, order.Status)
	assert.Equal(t, 0, order.RemainingRefundable())
	require.NotNil(t, order.RefundedAt)
	require.Len(t, order.StatusHistory, 1)
}

func TestOrderProcessRefundPartialForcesRefundedStatus(t *testing.T) {
	order := paidOrder(enums.OrderStatusDelivered, 2500)

	order.ProcessRefund(1000, "one item returned", "admin", time.Now())

	assert.Equal(t, enums.PaymentStatusPartiallyRefunded, order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusRefunded, order.Status)
	assert.Equal(t, 1500, order.RemainingRefundable())
	require.Len(t, order.StatusHistory, 1)
}

func TestOrderPartialRefundsAccumulateToFull(t *testing.T) {
	order := paidOrder(enums.OrderStatusDelivered, 2500)
	now := time.Now()

	order.ProcessRefund(1000, "first item", "admin", now)
	order.ProcessRefund(1500, "rest of order", "admin", now.Add(time.Minute))

	assert.Equal(t, enums.PaymentStatusRefunded, order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusRefunded, order.Status)
	require.Len(t, order.StatusHistory, 2)
}
