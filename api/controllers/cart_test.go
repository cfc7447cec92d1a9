package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/internal/cart"
	"github.com/oakmart/storefront-backend/pkg/db/models"
)

type stubCartService struct {
	lastOwner cart.Owner
	lastAdd   cart.AddItemDTO
	merged    bool
}

func (s *stubCartService) Get(_ context.Context, owner cart.Owner) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) AddItem(_ context.Context, owner cart.Owner, dto cart.AddItemDTO) (*models.Cart, error) {
	s.lastOwner = owner
	s.lastAdd = dto
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) UpdateItemQuantity(_ context.Context, owner cart.Owner, _ uuid.UUID, _ int) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, owner cart.Owner, _ uuid.UUID) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) Clear(_ context.Context, owner cart.Owner) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) ApplyDiscount(_ context.Context, owner cart.Owner, _ cart.ApplyDiscountDTO) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) RemoveDiscount(_ context.Context, owner cart.Owner) (*models.Cart, error) {
	s.lastOwner = owner
	return &models.Cart{ID: uuid.New()}, nil
}

func (s *stubCartService) Validate(_ context.Context, owner cart.Owner) ([]cart.Issue, error) {
	s.lastOwner = owner
	return nil, nil
}

func (s *stubCartService) Merge(context.Context, uuid.UUID, string) (*models.Cart, error) {
	s.merged = true
	return &models.Cart{ID: uuid.New()}, nil
}

func TestCartGetUsesSessionHeader(t *testing.T) {
	svc := &stubCartService{}
	handler := CartGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "guest-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOwner.SessionID == nil || *svc.lastOwner.SessionID != "guest-abc" {
		t.Fatalf("expected session owner, got %+v", svc.lastOwner)
	}
}

func TestCartGetPrefersAuthenticatedUser(t *testing.T) {
	svc := &stubCartService{}
	handler := CartGet(svc, nil)

	userID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-Session-Id", "guest-abc")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastOwner.UserID == nil || *svc.lastOwner.UserID != userID {
		t.Fatalf("expected user owner, got %+v", svc.lastOwner)
	}
}

func TestCartGetRejectsAnonymousWithoutSession(t *testing.T) {
	handler := CartGet(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartAddItemForwardsPayload(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, nil)

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","quantity":2,"variant":{"size":"m"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req.Header.Set("X-Session-Id", "guest-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAdd.ProductID != productID || svc.lastAdd.Quantity != 2 {
		t.Fatalf("payload not forwarded: %+v", svc.lastAdd)
	}
	if svc.lastAdd.Variant["size"] != "m" {
		t.Fatalf("variant not forwarded: %+v", svc.lastAdd.Variant)
	}
}

func TestCartMergeRequiresSessionHeader(t *testing.T) {
	svc := &stubCartService{}
	handler := CartMerge(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if svc.merged {
		t.Fatal("merge should not run without a session header")
	}
}
