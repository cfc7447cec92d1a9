package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/users"
	pkgauth "github.com/oakmart/storefront-backend/pkg/auth"
	"github.com/oakmart/storefront-backend/pkg/config"
	"github.com/oakmart/storefront-backend/pkg/db"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
	"github.com/oakmart/storefront-backend/pkg/security"
)

// userStore is the slice of the users repository the auth service needs.
type userStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	UpdateLoginState(ctx context.Context, user *models.User) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users    userStore
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

// Service exposes account registration, login and profile management.
type Service interface {
	Register(ctx context.Context, dto RegisterDTO) (SessionDTO, error)
	Login(ctx context.Context, dto LoginDTO) (SessionDTO, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, dto users.UpdateProfileDTO) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, dto ChangePasswordDTO) error
}

type service struct {
	users    userStore
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users store is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	return &service{
		users:    params.Users,
		jwt:      params.JWT,
		password: params.Password,
		now:      time.Now,
	}, nil
}

// Register creates an account and returns a session for it.
func (s *service) Register(ctx context.Context, dto RegisterDTO) (SessionDTO, error) {
	if _, err := s.users.FindByEmail(ctx, dto.Email); err == nil {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email availability")
	}

	hash, err := security.HashPassword(dto.Password, s.password)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Phone:        dto.Phone,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.mintSession(user)
}

// Login verifies credentials and returns a session. Failed attempts count
// toward the lockout window even when the account email was valid.
func (s *service) Login(ctx context.Context, dto LoginDTO) (SessionDTO, error) {
	user, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	now := s.now()
	if user.IsLocked(now) {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeRateLimit, "account is temporarily locked, try again later")
	}
	if !user.IsActive {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	match, err := security.VerifyPassword(dto.Password, user.PasswordHash)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		user.RegisterFailedLogin(now, s.password.MaxLoginAttempts, s.password.LockoutDuration)
		if err := s.users.UpdateLoginState(ctx, user); err != nil {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record failed login")
		}
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	user.ResetLoginAttempts(now)
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}

	return s.mintSession(user)
}

// Profile loads the authenticated user's account.
func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

// UpdateProfile applies partial profile edits and returns the updated user.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, dto users.UpdateProfileDTO) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		user.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		user.LastName = *dto.LastName
	}
	if dto.Phone != nil {
		user.Phone = dto.Phone
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return user, nil
}

// ChangePassword rotates the password after checking the current one.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, dto ChangePasswordDTO) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}

	match, err := security.VerifyPassword(dto.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(dto.NewPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash

	if err := s.users.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return nil
}

func (s *service) mintSession(user *models.User) (SessionDTO, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return SessionDTO{User: user, Token: token}, nil
}
