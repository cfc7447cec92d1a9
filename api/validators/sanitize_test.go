package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStringTrims(t *testing.T) {
	assert.Equal(t, "winter boots", SanitizeString("  winter boots \n", 0))
}

func TestSanitizeStringTruncatesRunes(t *testing.T) {
	got := SanitizeString(strings.Repeat("é", 10), 4)
	assert.Equal(t, "éééé", got)
}

func TestSanitizeStringShortInputUntouched(t *testing.T) {
	assert.Equal(t, "sale", SanitizeString("sale", 255))
}
