package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/storefront-backend/pkg/enums"
)

// ErrCartItemNotFound marks a cart mutation that targeted a line the cart
// does not hold. The cart service translates it into a not-found response.
var ErrCartItemNotFound = errors.New("item not found in cart")

// Cart is a mutable bag of priced lines owned by either a user or an
// anonymous session. All mutators recompute the totals before returning, so
// total == subtotal + tax + shipping - discount holds at every call boundary.
type Cart struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	SessionID     *string             `gorm:"column:session_id;index"`
	Status        enums.CartStatus    `gorm:"column:status;not null;default:'active'"`
	Items         []CartItem          `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	SubtotalCents int                 `gorm:"column:subtotal_cents;not null;default:0"`
	TaxCents      int                 `gorm:"column:tax_cents;not null;default:0"`
	ShippingCents int                 `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCode  *string             `gorm:"column:discount_code"`
	DiscountType  *enums.DiscountType `gorm:"column:discount_type"`
	DiscountValue int                 `gorm:"column:discount_value;not null;default:0"`
	DiscountCents int                 `gorm:"column:discount_cents;not null;default:0"`
	TotalCents    int                 `gorm:"column:total_cents;not null;default:0"`
	TaxRateBPS    int                 `gorm:"column:tax_rate_bps;not null;default:0"`
	ExpiresAt     time.Time           `gorm:"column:expires_at;not null;index"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AddItemParams carries the product snapshot a new line is built from.
type AddItemParams struct {
	ProductID   uuid.UUID
	Name        string
	SKU         string
	PriceCents  int
	Quantity    int
	Variant     map[string]string
	MaxQuantity int
}

// AddItem appends a line, or bumps the quantity of an existing line with the
// same product and structurally equal variant. Quantities clamp to the line's
// max when one is set.
func (c *Cart) AddItem(p AddItemParams) *CartItem {
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == p.ProductID && item.Variant.Equal(p.Variant) {
			item.Quantity += p.Quantity
			if item.MaxQuantity > 0 && item.Quantity > item.MaxQuantity {
				item.Quantity = item.MaxQuantity
			}
			item.Available = true
			item.recalc()
			c.CalculateTotals()
			return item
		}
	}
	item := CartItem{
		ID:          uuid.New(),
		CartID:      c.ID,
		ProductID:   p.ProductID,
		Name:        p.Name,
		SKU:         p.SKU,
		PriceCents:  p.PriceCents,
		Quantity:    p.Quantity,
		Variant:     p.Variant,
		MaxQuantity: p.MaxQuantity,
		Available:   true,
	}
	if item.MaxQuantity > 0 && item.Quantity > item.MaxQuantity {
		item.Quantity = item.MaxQuantity
	}
	item.recalc()
	c.Items = append(c.Items, item)
	c.CalculateTotals()
	return &c.Items[len(c.Items)-1]
}

// UpdateItemQuantity sets a line's quantity. Zero or negative removes the
// line. Returns ErrCartItemNotFound when no line has the given id.
func (c *Cart) UpdateItemQuantity(itemID uuid.UUID, qty int) error {
	for i := range c.Items {
		if c.Items[i].ID != itemID {
			continue
		}
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.CalculateTotals()
			return nil
		}
		item := &c.Items[i]
		item.Quantity = qty
		if item.MaxQuantity > 0 && item.Quantity > item.MaxQuantity {
			item.Quantity = item.MaxQuantity
		}
		item.recalc()
		c.CalculateTotals()
		return nil
	}
	return ErrCartItemNotFound
}

// RemoveItem drops a line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(itemID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.CalculateTotals()
}

// Clear empties the cart and drops any applied discount.
func (c *Cart) Clear() {
	c.Items = nil
	c.RemoveDiscount()
}

// ApplyDiscount attaches a discount and recomputes totals. Value is a whole
// percentage for percentage discounts and cents for fixed ones.
func (c *Cart) ApplyDiscount(code string, discountType enums.DiscountType, value int) {
	c.DiscountCode = &code
	c.DiscountType = &discountType
	c.DiscountValue = value
	c.CalculateTotals()
}

// RemoveDiscount detaches the discount and recomputes totals.
func (c *Cart) RemoveDiscount() {
	c.DiscountCode = nil
	c.DiscountType = nil
	c.DiscountValue = 0
	c.CalculateTotals()
}

// CalculateTotals rolls the lines up into the cart totals. The grand total is
// not floored at zero: a fixed discount larger than the rest of the cart
// yields a negative total that the checkout validation rejects.
func (c *Cart) CalculateTotals() {
	subtotal := 0
	for i := range c.Items {
		c.Items[i].recalc()
		subtotal += c.Items[i].TotalCents
	}
	c.SubtotalCents = subtotal

	if c.TaxRateBPS > 0 {
		c.TaxCents = int(decimal.NewFromInt(int64(subtotal)).
			Mul(decimal.NewFromInt(int64(c.TaxRateBPS))).
			Div(decimal.NewFromInt(10000)).
			Round(0).IntPart())
	} else {
		c.TaxCents = 0
	}

	c.DiscountCents = 0
	if c.DiscountType != nil {
		switch *c.DiscountType {
		case enums.DiscountTypePercentage:
			c.DiscountCents = int(decimal.NewFromInt(int64(subtotal)).
				Mul(decimal.NewFromInt(int64(c.DiscountValue))).
				Div(decimal.NewFromInt(100)).
				Round(0).IntPart())
		case enums.DiscountTypeFixed:
			c.DiscountCents = c.DiscountValue
		}
	}

	c.TotalCents = c.SubtotalCents + c.TaxCents + c.ShippingCents - c.DiscountCents
}

// MergeFrom folds another cart's lines into this one, coalescing lines that
// share a product and variant. The source cart is left untouched.
func (c *Cart) MergeFrom(other *Cart) {
	for _, item := range other.Items {
		c.AddItem(AddItemParams{
			ProductID:   item.ProductID,
			Name:        item.Name,
			SKU:         item.SKU,
			PriceCents:  item.PriceCents,
			Quantity:    item.Quantity,
			Variant:     item.Variant,
			MaxQuantity: item.MaxQuantity,
		})
	}
}

// IsExpired reports whether the cart passed its expiry.
func (c *Cart) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// UniqueItems counts distinct lines.
func (c *Cart) UniqueItems() int {
	return len(c.Items)
}

// TotalQuantity sums the quantities across all lines.
func (c *Cart) TotalQuantity() int {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Quantity
	}
	return total
}

// Touch extends the cart's expiry window from now.
func (c *Cart) Touch(now time.Time, ttl time.Duration) {
	c.ExpiresAt = now.Add(ttl)
}
