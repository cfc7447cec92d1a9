package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

type stubCategoryStore struct {
	byID   map[uuid.UUID]*models.Category
	bySlug map[string]*models.Category
	counts map[uuid.UUID]int64
}

func newStubCategoryStore() *stubCategoryStore {
	return &stubCategoryStore{
		byID:   map[uuid.UUID]*models.Category{},
		bySlug: map[string]*models.Category{},
		counts: map[uuid.UUID]int64{},
	}
}

func (s *stubCategoryStore) put(c *models.Category) {
	s.byID[c.ID] = c
	s.bySlug[c.Slug] = c
}

func (s *stubCategoryStore) ListAll(_ context.Context, status *enums.CategoryStatus) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.byID {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCategoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	if c, ok := s.bySlug[slug]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryStore) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := s.bySlug[slug]
	return ok, nil
}

func (s *stubCategoryStore) FindChildren(_ context.Context, parentID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	for _, c := range s.byID {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubCategoryStore) CountChildren(_ context.Context, parentID uuid.UUID) (int64, error) {
	children, _ := s.FindChildren(context.Background(), parentID)
	return int64(len(children)), nil
}

func (s *stubCategoryStore) Create(_ context.Context, c *models.Category) error {
	clone := *c
	s.put(&clone)
	return nil
}

func (s *stubCategoryStore) Save(_ context.Context, c *models.Category) error {
	if prev, ok := s.byID[c.ID]; ok && prev.Slug != c.Slug {
		delete(s.bySlug, prev.Slug)
	}
	clone := *c
	s.put(&clone)
	return nil
}

func (s *stubCategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	if c, ok := s.byID[id]; ok {
		delete(s.bySlug, c.Slug)
		delete(s.byID, id)
	}
	return nil
}

func (s *stubCategoryStore) SetProductCount(_ context.Context, id uuid.UUID, count int64) error {
	if c, ok := s.byID[id]; ok {
		c.ProductCount = int(count)
	}
	return nil
}

type stubProductCounter struct {
	counts map[uuid.UUID]int64
}

func (s *stubProductCounter) CountByCategory(_ context.Context, id uuid.UUID) (int64, error) {
	return s.counts[id], nil
}

type passthroughTxRunner struct{}

func (passthroughTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTreeService(t *testing.T, store *stubCategoryStore, counter *stubProductCounter) Service {
	t.Helper()
	if counter == nil {
		counter = &stubProductCounter{counts: map[uuid.UUID]int64{}}
	}
	svc, err := NewService(ServiceParams{
		Categories:   store,
		Products:     counter,
		DB:           passthroughTxRunner{},
		StoreFactory: func(_ *gorm.DB) categoryStore { return store },
	})
	require.NoError(t, err)
	return svc
}

func mustCreate(t *testing.T, svc Service, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()
	category, err := svc.Create(context.Background(), CreateCategoryInput{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return category
}

func TestCreateChildMaterializesPath(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Electronics", nil)
	child := mustCreate(t, svc, "Laptops", &root.ID)

	assert.Equal(t, 1, child.Level)
	require.Len(t, child.Ancestors, 1)
	assert.Equal(t, root.ID, child.Ancestors[0].ID)
}

func TestMoveRebuildsDescendantPaths(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	oldRoot := mustCreate(t, svc, "Old Root", nil)
	newRoot := mustCreate(t, svc, "New Root", nil)
	mid := mustCreate(t, svc, "Mid", &oldRoot.ID)
	leaf := mustCreate(t, svc, "Leaf", &mid.ID)

	_, err := svc.Update(context.Background(), mid.ID, UpdateCategoryInput{ParentID: &newRoot.ID})
	require.NoError(t, err)

	movedLeaf := store.byID[leaf.ID]
	require.Len(t, movedLeaf.Ancestors, 2)
	assert.Equal(t, newRoot.ID, movedLeaf.Ancestors[0].ID)
	assert.Equal(t, mid.ID, movedLeaf.Ancestors[1].ID)
	assert.Equal(t, 2, movedLeaf.Level)
}

func TestMoveToRootClearsPaths(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Root", nil)
	mid := mustCreate(t, svc, "Mid", &root.ID)
	leaf := mustCreate(t, svc, "Leaf", &mid.ID)

	_, err := svc.Update(context.Background(), mid.ID, UpdateCategoryInput{ClearParent: true})
	require.NoError(t, err)

	assert.Equal(t, 0, store.byID[mid.ID].Level)
	movedLeaf := store.byID[leaf.ID]
	assert.Equal(t, 1, movedLeaf.Level)
	require.Len(t, movedLeaf.Ancestors, 1)
	assert.Equal(t, mid.ID, movedLeaf.Ancestors[0].ID)
}

func TestMoveUnderOwnDescendantRejected(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Root", nil)
	child := mustCreate(t, svc, "Child", &root.ID)

	_, err := svc.Update(context.Background(), root.ID, UpdateCategoryInput{ParentID: &child.ID})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestMoveUnderSelfRejected(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Root", nil)

	_, err := svc.Update(context.Background(), root.ID, UpdateCategoryInput{ParentID: &root.ID})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRenameCascadesIntoDescendantPaths(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Electronics", nil)
	child := mustCreate(t, svc, "Laptops", &root.ID)

	name := "Gadgets"
	_, err := svc.Update(context.Background(), root.ID, UpdateCategoryInput{Name: &name})
	require.NoError(t, err)

	refreshed := store.byID[child.ID]
	require.Len(t, refreshed.Ancestors, 1)
	assert.Equal(t, "Gadgets", refreshed.Ancestors[0].Name)
	assert.Equal(t, "gadgets", refreshed.Ancestors[0].Slug)
}

func TestDeleteGuards(t *testing.T) {
	store := newStubCategoryStore()
	counter := &stubProductCounter{counts: map[uuid.UUID]int64{}}
	svc := newTreeService(t, store, counter)

	root := mustCreate(t, svc, "Root", nil)
	child := mustCreate(t, svc, "Child", &root.ID)

	err := svc.Delete(context.Background(), root.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	counter.counts[child.ID] = 3
	err = svc.Delete(context.Background(), child.ID)
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	counter.counts[child.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), child.ID))
	require.NoError(t, svc.Delete(context.Background(), root.ID))
}

func TestTreeNestsActiveNodes(t *testing.T) {
	store := newStubCategoryStore()
	svc := newTreeService(t, store, nil)

	root := mustCreate(t, svc, "Root", nil)
	mustCreate(t, svc, "Child", &root.ID)
	inactive := mustCreate(t, svc, "Hidden", nil)
	store.byID[inactive.ID].Status = enums.CategoryStatusInactive

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].Category.ID)
	require.Len(t, tree[0].Children, 1)
}

func TestRecountProducts(t *testing.T) {
	store := newStubCategoryStore()
	counter := &stubProductCounter{counts: map[uuid.UUID]int64{}}
	svc := newTreeService(t, store, counter)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", nil)
	counter.counts[a.ID] = 7

	updated, err := svc.RecountProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, updated)
	assert.Equal(t, 7, store.byID[a.ID].ProductCount)
	assert.Equal(t, 0, store.byID[b.ID].ProductCount)
}
