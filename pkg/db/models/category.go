package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/enums"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// Category is a catalog tree node. Ancestors materializes the path from the
// root to the immediate parent so reads never walk the tree; Level always
// equals len(Ancestors).
type Category struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string               `gorm:"column:name;not null"`
	Slug         string               `gorm:"column:slug;not null;uniqueIndex"`
	Description  *string              `gorm:"column:description"`
	ParentID     *uuid.UUID           `gorm:"column:parent_id;type:uuid;index"`
	Ancestors    types.CategoryPath   `gorm:"column:ancestors;type:jsonb;serializer:json"`
	Level        int                  `gorm:"column:level;not null;default:0"`
	Status       enums.CategoryStatus `gorm:"column:status;not null;default:'active'"`
	ProductCount int                  `gorm:"column:product_count;not null;default:0"`
	SortOrder    int                  `gorm:"column:sort_order;not null;default:0"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Summary returns the denormalized ref stored on descendants.
func (c *Category) Summary() types.CategoryRef {
	return types.CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// SetParent recomputes this node's level and materialized path from the new
// parent. The recompute is one hop only: already-materialized descendants are
// not touched here, the category service rebuilds them on a move.
func (c *Category) SetParent(parent *Category) {
	if parent == nil {
		c.ClearParent()
		return
	}
	parentID := parent.ID
	c.ParentID = &parentID
	c.Level = parent.Level + 1
	c.Ancestors = parent.Ancestors.Append(parent.Summary())
}

// ClearParent turns the node into a root.
func (c *Category) ClearParent() {
	c.ParentID = nil
	c.Level = 0
	c.Ancestors = types.CategoryPath{}
}
