package cart

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous session. Exactly one side is set.
type Owner struct {
	UserID    *uuid.UUID
	SessionID *string
}

// IsZero reports whether neither side is set.
func (o Owner) IsZero() bool {
	return o.UserID == nil && (o.SessionID == nil || *o.SessionID == "")
}

// AddItemDTO carries an add-to-cart request after validation.
type AddItemDTO struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   map[string]string
}

// ApplyDiscountDTO carries a discount application request.
type ApplyDiscountDTO struct {
	Code  string
	Type  enums.DiscountType
	Value int
}

// IssueKind classifies a cart validation finding.
type IssueKind string

const (
	IssueProductMissing    IssueKind = "product_missing"
	IssueProductInactive   IssueKind = "product_inactive"
	IssueInsufficientStock IssueKind = "insufficient_stock"
	IssuePriceChanged      IssueKind = "price_changed"
)

// Issue is one finding from a cart validation pass.
type Issue struct {
	ItemID    uuid.UUID `json:"item_id"`
	ProductID uuid.UUID `json:"product_id"`
	Kind      IssueKind `json:"kind"`
	Message   string    `json:"message"`
}
