package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD2609010001", FormatOrderNumber(2026, 9, 1, 1))
	assert.Equal(t, "ORD2612310042", FormatOrderNumber(2026, 12, 31, 42))
	assert.Equal(t, "ORD2601019999", FormatOrderNumber(2026, 1, 1, 9999))
}

// The number format carries no entropy beyond the sequence. Two checkouts
// handed the same sequence value on the same day would collide, which is why
// checkout takes the value from an atomic per-day counter row.
func TestFormatOrderNumberSameSequenceCollides(t *testing.T) {
	a := FormatOrderNumber(2026, 9, 1, 7)
	b := FormatOrderNumber(2026, 9, 1, 7)
	c := FormatOrderNumber(2026, 9, 1, 8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
