package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestVariantEqual(t *testing.T) {
	a := Variant{"size": "m", "color": "red"}
	b := Variant{"color": "red", "size": "m"}
	c := Variant{"size": "l", "color": "red"}

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Variant(nil).Equal(Variant{}))
	assert.False(t, a.Equal(nil))
}

func TestUUIDSetAddRemove(t *testing.T) {
	var set UUIDSet
	id := uuid.New()

	assert.True(t, set.Add(id))
	assert.False(t, set.Add(id))
	assert.True(t, set.Contains(id))
	assert.True(t, set.Remove(id))
	assert.False(t, set.Remove(id))
	assert.Empty(t, set)
}
