package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// categoryStore is the slice of the repository the service needs.
type categoryStore interface {
	ListAll(ctx context.Context, status *enums.CategoryStatus) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]models.Category, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	Create(ctx context.Context, category *models.Category) error
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetProductCount(ctx context.Context, id uuid.UUID, count int64) error
}

// productCounter reports live product counts per category.
type productCounter interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

// txRunner executes a function inside one database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// storeFactory rebinds the category store to a transaction.
type storeFactory func(tx *gorm.DB) categoryStore

// ServiceParams groups dependencies for the category service.
type ServiceParams struct {
	Categories   categoryStore
	Products     productCounter
	DB           txRunner
	StoreFactory storeFactory
}

// Service exposes category tree reads and admin tree management.
type Service interface {
	Tree(ctx context.Context) ([]TreeNode, error)
	List(ctx context.Context, includeInactive bool) ([]models.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecountProducts(ctx context.Context) (int, error)
}

type service struct {
	categories   categoryStore
	products     productCounter
	db           txRunner
	storeFactory storeFactory
}

// NewService builds the category service.
func NewService(params ServiceParams) (Service, error) {
	if params.Categories == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category store is required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product counter is required")
	}
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx runner is required")
	}
	factory := params.StoreFactory
	if factory == nil {
		factory = func(tx *gorm.DB) categoryStore { return NewRepository(tx) }
	}
	return &service{
		categories:   params.Categories,
		products:     params.Products,
		db:           params.DB,
		storeFactory: factory,
	}, nil
}

// Tree returns the nested tree of active categories.
func (s *service) Tree(ctx context.Context) ([]TreeNode, error) {
	active := enums.CategoryStatusActive
	all, err := s.categories.ListAll(ctx, &active)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return buildTree(all), nil
}

// buildTree assembles nested nodes from the flat parent pointers. Rows arrive
// level-ordered so parents always precede their children.
func buildTree(all []models.Category) []TreeNode {
	children := map[uuid.UUID][]models.Category{}
	var roots []models.Category
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var attach func(c models.Category) TreeNode
	attach = func(c models.Category) TreeNode {
		node := TreeNode{Category: c}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, attach(child))
		}
		return node
	}

	nodes := make([]TreeNode, 0, len(roots))
	for _, root := range roots {
		nodes = append(nodes, attach(root))
	}
	return nodes
}

// List returns the flat category list, optionally including inactive nodes.
func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var status *enums.CategoryStatus
	if !includeInactive {
		active := enums.CategoryStatusActive
		status = &active
	}
	all, err := s.categories.ListAll(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return all, nil
}

// Get loads one category by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

// GetBySlug loads one category by its URL slug.
func (s *service) GetBySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	category, err := s.categories.FindBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

// Create inserts a node under the requested parent.
func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category status %q", input.Status))
	}

	categorySlug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Slug:        categorySlug,
		Description: input.Description,
		SortOrder:   input.SortOrder,
		Status:      enums.CategoryStatusActive,
	}
	if input.Status != "" {
		category.Status = input.Status
	}

	if input.ParentID != nil {
		parent, err := s.Get(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		category.SetParent(parent)
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

// Update applies edits. A rename cascades the new name into every
// descendant's materialized path, and a move rebuilds the whole subtree, both
// inside one transaction.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category status %q", *input.Status))
	}

	renamed := false
	if input.Name != nil && strings.TrimSpace(*input.Name) != category.Name {
		category.Name = strings.TrimSpace(*input.Name)
		if slug.Make(category.Name) != category.Slug {
			categorySlug, err := s.uniqueSlug(ctx, category.Name)
			if err != nil {
				return nil, err
			}
			category.Slug = categorySlug
		}
		renamed = true
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}
	if input.Status != nil {
		category.Status = *input.Status
	}

	moved := false
	var newParent *models.Category
	switch {
	case input.ClearParent:
		moved = category.ParentID != nil
	case input.ParentID != nil:
		if *input.ParentID == category.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be its own parent")
		}
		parent, err := s.Get(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Ancestors.Contains(category.ID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot move a category under its own descendant")
		}
		moved = category.ParentID == nil || *category.ParentID != parent.ID
		newParent = parent
	}

	if !moved && !renamed {
		if err := s.categories.Save(ctx, category); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category")
		}
		return category, nil
	}

	if moved {
		category.SetParent(newParent)
	}

	// Persist the node and rebuild descendant paths atomically so a crash
	// cannot leave half the subtree pointing at the old location.
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		store := s.storeFactory(tx)
		if err := store.Save(ctx, category); err != nil {
			return err
		}
		return rebuildSubtree(ctx, store, category)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rebuild category subtree")
	}
	return category, nil
}

// rebuildSubtree walks the children depth-first, recomputing each node's
// level and path from its freshly saved parent.
func rebuildSubtree(ctx context.Context, store categoryStore, parent *models.Category) error {
	children, err := store.FindChildren(ctx, parent.ID)
	if err != nil {
		return err
	}
	for i := range children {
		child := &children[i]
		child.SetParent(parent)
		if err := store.Save(ctx, child); err != nil {
			return err
		}
		if err := rebuildSubtree(ctx, store, child); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a leaf category that holds no products.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	childCount, err := s.categories.CountChildren(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count children")
	}
	if childCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category has child categories")
	}

	productCount, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if productCount > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}

	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// RecountProducts refreshes every cached product counter from live counts
// and returns how many categories were updated.
func (s *service) RecountProducts(ctx context.Context) (int, error) {
	all, err := s.categories.ListAll(ctx, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	updated := 0
	for i := range all {
		category := &all[i]
		count, err := s.products.CountByCategory(ctx, category.ID)
		if err != nil {
			return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
		}
		if int64(category.ProductCount) == count {
			continue
		}
		if err := s.categories.SetProductCount(ctx, category.ID, count); err != nil {
			return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set product count")
		}
		updated++
	}
	return updated, nil
}

// uniqueSlug slugifies the name, shifting to a numbered suffix on collision.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "category name produces an empty slug")
	}
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.categories.SlugExists(ctx, candidate)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
