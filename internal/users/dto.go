package users

import (
	"strings"

	"github.com/google/uuid"

	"github.com/oakmart/storefront-backend/pkg/db/models"
	"github.com/oakmart/storefront-backend/pkg/types"
)

// CreateUserDTO carries the fields needed to persist a new account.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
}

// ToModel maps the DTO onto a fresh user model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		PasswordHash: d.PasswordHash,
		FirstName:    strings.TrimSpace(d.FirstName),
		LastName:     strings.TrimSpace(d.LastName),
		Phone:        d.Phone,
		IsActive:     true,
	}
}

// UpdateProfileDTO carries partial profile updates. Nil fields are untouched.
type UpdateProfileDTO struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// AddressDTO carries an address book entry for create and update.
type AddressDTO struct {
	Label     string
	Address   types.Address
	IsDefault bool
}
