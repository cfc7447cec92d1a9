package auth

import (
	"github.com/oakmart/storefront-backend/pkg/db/models"
)

// RegisterDTO carries a signup request after validation.
type RegisterDTO struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginDTO carries a login attempt.
type LoginDTO struct {
	Email    string
	Password string
}

// SessionDTO pairs the authenticated user with a freshly minted token.
type SessionDTO struct {
	User  *models.User
	Token string
}

// ChangePasswordDTO carries a password rotation request.
type ChangePasswordDTO struct {
	CurrentPassword string
	NewPassword     string
}
