package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/enums"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/security"
)

type stubUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User

	created     []users.CreateUserDTO
	loginStates int
	createErr   error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserStore) add(user *models.User) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
}

func (s *stubUserStore) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	s.add(user)
	return user, nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) Save(_ context.Context, user *models.User) error {
	s.add(user)
	return nil
}

func (s *stubUserStore) UpdateLoginState(_ context.Context, _ *models.User) error {
	s.loginStates++
	return nil
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwt := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 60,
	}
	password := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
		MaxLoginAttempts: 5,
		LockoutDuration:  2 * time.Hour,
	}
	return jwt, password
}

func newTestService(t *testing.T, store *stubUserStore) Service {
	t.Helper()
	jwt, password := testConfigs()
	svc, err := NewService(ServiceParams{Users: store, JWT: jwt, Password: password})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, store *stubUserStore, email, password string) *models.User {
	t.Helper()
	_, passwordCfg := testConfigs()
	hash, err := security.HashPassword(password, passwordCfg)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	}
	store.add(user)
	return user
}

func TestRegisterCreatesUserAndSession(t *testing.T) {
	store := newStubUserStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterDTO{
		Email:     "ada@example.com",
		Password:  "correct horse battery",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})

	require.NoError(t, err)
	require.NotNil(t, session.User)
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "correct horse battery", session.User.PasswordHash)
	require.Len(t, store.created, 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newStubUserStore()
	seedUser(t, store, "ada@example.com", "pw")
	svc := newTestService(t, store)

	_, err := svc.Register(context.Background(), RegisterDTO{
		Email:    "ada@example.com",
		Password: "another",
	})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "correct horse battery")
	user.LoginAttempts = 3
	svc := newTestService(t, store)

	session, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 0, user.LoginAttempts)
	require.NotNil(t, user.LastLoginAt)
}

func TestLoginWrongPasswordCountsAttempt(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "correct horse battery")
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ada@example.com",
		Password: "wrong",
	})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, 1, user.LoginAttempts)
	assert.Equal(t, 1, store.loginStates)
}

func TestLoginLockedAccount(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "correct horse battery")
	until := time.Now().Add(time.Hour)
	user.LockUntil = &until
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "correct horse battery")
	svc := newTestService(t, store)

	for i := 0; i < 5; i++ {
		_, err := svc.Login(context.Background(), LoginDTO{
			Email:    "ada@example.com",
			Password: "wrong",
		})
		require.Error(t, err)
	}

	require.NotNil(t, user.LockUntil)

	_, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeRateLimit, typed.Code())
}

func TestLoginUnknownEmailIsUnauthorized(t *testing.T) {
	store := newStubUserStore()
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "correct horse battery")
	user.IsActive = false
	svc := newTestService(t, store)

	_, err := svc.Login(context.Background(), LoginDTO{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "old password")
	svc := newTestService(t, store)

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordDTO{
		CurrentPassword: "wrong",
		NewPassword:     "new password",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	err = svc.ChangePassword(context.Background(), user.ID, ChangePasswordDTO{
		CurrentPassword: "old password",
		NewPassword:     "new password",
	})
	require.NoError(t, err)

	match, err := security.VerifyPassword("new password", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestUpdateProfilePartial(t *testing.T) {
	store := newStubUserStore()
	user := seedUser(t, store, "ada@example.com", "pw")
	svc := newTestService(t, store)

	first := "Augusta"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, users.UpdateProfileDTO{FirstName: &first})

	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName)
}
