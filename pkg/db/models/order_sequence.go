package models

import "fmt"

// OrderSequence is a per-day counter row. Checkout bumps it with a single
// INSERT ... ON CONFLICT DO UPDATE ... RETURNING so concurrent checkouts on
// the same day can never mint the same number.
type OrderSequence struct {
	Day   string `gorm:"column:day;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}

// FormatOrderNumber renders an order number from its parts: ORD, the date as
// YYMMDD, and the day's sequence zero-padded to four digits.
func FormatOrderNumber(year, month, day int, seq int64) string {
	return fmt.Sprintf("ORD%02d%02d%02d%04d", year%100, month, day, seq)
}
