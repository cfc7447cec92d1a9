package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/api/middleware"
	"github.com/oakmart/storefront-backend/internal/auth"
	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	registered *auth.RegisterDTO
	loginErr   error
	profile    *models.User
}

func (s *stubAuthService) Register(_ context.Context, dto auth.RegisterDTO) (auth.SessionDTO, error) {
	s.registered = &dto
	return auth.SessionDTO{
		User:  &models.User{ID: uuid.New(), Email: dto.Email},
		Token: "token",
	}, nil
}

func (s *stubAuthService) Login(_ context.Context, dto auth.LoginDTO) (auth.SessionDTO, error) {
	if s.loginErr != nil {
		return auth.SessionDTO{}, s.loginErr
	}
	return auth.SessionDTO{
		User:  &models.User{ID: uuid.New(), Email: dto.Email},
		Token: "token",
	}, nil
}

func (s *stubAuthService) Profile(context.Context, uuid.UUID) (*models.User, error) {
	return s.profile, nil
}

func (s *stubAuthService) UpdateProfile(context.Context, uuid.UUID, users.UpdateProfileDTO) (*models.User, error) {
	return s.profile, nil
}

func (s *stubAuthService) ChangePassword(context.Context, uuid.UUID, auth.ChangePasswordDTO) error {
	return nil
}

func TestAuthRegisterCreated(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthRegister(svc, nil)

	body := `{"email":"shopper@example.com","password":"long-enough-pass","first_name":"Ada","last_name":"Byron"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.registered == nil || svc.registered.Email != "shopper@example.com" {
		t.Fatalf("register not forwarded: %+v", svc.registered)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	handler := AuthRegister(&stubAuthService{}, nil)

	body := `{"email":"not-an-email","password":"short","first_name":"","last_name":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	var payload struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if _, ok := payload.Error.Details["email"]; !ok {
		t.Fatalf("expected email detail, got %v", payload.Error.Details)
	}
}

func TestAuthLoginLockedOut(t *testing.T) {
	svc := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeRateLimit, "account locked, try again later")}
	handler := AuthLogin(svc, nil)

	body := `{"email":"shopper@example.com","password":"whatever-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}
}

func TestAuthProfileRequiresContextUser(t *testing.T) {
	handler := AuthProfile(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthProfileReturnsUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "shopper@example.com"}
	handler := AuthProfile(&stubAuthService{profile: user}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/profile", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), user.ID.String()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), user.ID.String()) {
		t.Fatalf("expected user payload, got %s", rec.Body.String())
	}
}
