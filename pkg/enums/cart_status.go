package enums

// CartStatus tracks whether a cart is still usable.
type CartStatus string

const (
	CartStatusActive   CartStatus = "active"
	CartStatusMerged   CartStatus = "merged"
	CartStatusInactive CartStatus = "inactive"
)

var validCartStatuses = []CartStatus{
	CartStatusActive,
	CartStatusMerged,
	CartStatusInactive,
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}
