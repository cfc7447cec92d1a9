package types

// Variant captures a product option selection (size, color, ...) on a cart
// or order line. Lines are considered the same product only when their
// variants are structurally equal.
type Variant map[string]string

// Equal reports structural equality of two variants. Nil and empty variants
// compare equal.
func (v Variant) Equal(other Variant) bool {
	if len(v) != len(other) {
		return false
	}
	for key, value := range v {
		if other[key] != value {
			return false
		}
	}
	return true
}
