package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/storefront-backend/pkg/types"
)

func TestCategorySetParentMaterializesPath(t *testing.T) {
	root := &Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
	child := &Category{ID: uuid.New(), Name: "Laptops", Slug: "laptops"}

	child.SetParent(root)

	assert.Equal(t, 1, child.Level)
	require.Len(t, child.Ancestors, 1)
	assert.Equal(t, root.ID, child.Ancestors[0].ID)
	assert.Equal(t, "electronics", child.Ancestors[0].Slug)
	assert.Len(t, child.Ancestors, child.Level)
}

func TestCategorySetParentDeepChain(t *testing.T) {
	root := &Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
	mid := &Category{ID: uuid.New(), Name: "Computers", Slug: "computers"}
	leaf := &Category{ID: uuid.New(), Name: "Laptops", Slug: "laptops"}

	mid.SetParent(root)
	leaf.SetParent(mid)

	assert.Equal(t, 2, leaf.Level)
	require.Len(t, leaf.Ancestors, 2)
	assert.Equal(t, root.ID, leaf.Ancestors[0].ID)
	assert.Equal(t, mid.ID, leaf.Ancestors[1].ID)
}

// SetParent recomputes one hop only. A node moved under a new parent gets a
// correct path, but paths already materialized on its descendants are stale
// until the category service rebuilds the subtree.
func TestCategorySetParentLeavesDescendantsStale(t *testing.T) {
	oldRoot := &Category{ID: uuid.New(), Name: "Old", Slug: "old"}
	newRoot := &Category{ID: uuid.New(), Name: "New", Slug: "new"}
	moved := &Category{ID: uuid.New(), Name: "Moved", Slug: "moved"}
	grandchild := &Category{ID: uuid.New(), Name: "Leaf", Slug: "leaf"}

	moved.SetParent(oldRoot)
	grandchild.SetParent(moved)
	moved.SetParent(newRoot)

	assert.Equal(t, newRoot.ID, moved.Ancestors[0].ID)
	assert.Equal(t, oldRoot.ID, grandchild.Ancestors[0].ID)
}

func TestCategoryClearParent(t *testing.T) {
	root := &Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
	child := &Category{ID: uuid.New(), Name: "Laptops", Slug: "laptops"}
	child.SetParent(root)

	child.ClearParent()

	assert.Nil(t, child.ParentID)
	assert.Equal(t, 0, child.Level)
	assert.Equal(t, types.CategoryPath{}, child.Ancestors)
}
