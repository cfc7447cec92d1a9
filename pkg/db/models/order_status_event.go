package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// OrderStatusEvent is one append-only entry in an order's status history.
type OrderStatusEvent struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;not null"`
	Note      *string           `gorm:"column:note"`
	UpdatedBy string            `gorm:"column:updated_by;not null;default:'system'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
