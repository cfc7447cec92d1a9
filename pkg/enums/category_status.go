package enums

// CategoryStatus controls catalog visibility of a category.
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

var validCategoryStatuses = []CategoryStatus{
	CategoryStatusActive,
	CategoryStatusInactive,
}

// String implements fmt.Stringer.
func (c CategoryStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CategoryStatus.
func (c CategoryStatus) IsValid() bool {
	for _, candidate := range validCategoryStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}
