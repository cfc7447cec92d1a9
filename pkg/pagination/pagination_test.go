package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestNormalizeCapsLimit(t *testing.T) {
	p := Params{Page: 2, Limit: 5000}.Normalize()
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, 0, Params{Page: -3, Limit: 10}.Offset())
}

func TestMetaFor(t *testing.T) {
	meta := Params{Page: 3, Limit: 20}.MetaFor(55)
	assert.Equal(t, Meta{Page: 3, Limit: 20, Total: 55}, meta)
}
