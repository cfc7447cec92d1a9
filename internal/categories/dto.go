package categories

import (
	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
)

// CreateCategoryInput carries an admin create request after validation.
type CreateCategoryInput struct {
	Name        string
	Description *string
	ParentID    *uuid.UUID
	SortOrder   int
	Status      enums.CategoryStatus
}

// UpdateCategoryInput carries partial edits. Setting ParentID or ClearParent
// moves the node and triggers a subtree path rebuild.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ParentID    *uuid.UUID
	ClearParent bool
	SortOrder   *int
	Status      *enums.CategoryStatus
}

// TreeNode is one node of the nested category tree response.
type TreeNode struct {
	Category models.Category
	Children []TreeNode
}
