package address

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oakmart/storefront-backend/internal/users"
	"github.com/oakmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/oakmart/storefront-backend/pkg/errors"
)

// addressStore is the slice of the users repository the address book needs.
type addressStore interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
	CreateAddress(ctx context.Context, address *models.UserAddress) error
	SaveAddress(ctx context.Context, address *models.UserAddress) error
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	ClearDefaultAddress(ctx context.Context, userID uuid.UUID) error
}

// Service manages a user's saved addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error)
	Add(ctx context.Context, userID uuid.UUID, dto users.AddressDTO) (*models.UserAddress, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, dto users.AddressDTO) (*models.UserAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error)
}

type service struct {
	store addressStore
}

// NewService builds the address book service.
func NewService(store addressStore) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address store is required")
	}
	return &service{store: store}, nil
}

// List returns the user's address book.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.UserAddress, error) {
	addresses, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

// Add saves a new entry. The first entry in an empty book becomes the
// default regardless of the requested flag.
func (s *service) Add(ctx context.Context, userID uuid.UUID, dto users.AddressDTO) (*models.UserAddress, error) {
	if !dto.Address.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete")
	}

	existing, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}

	isDefault := dto.IsDefault || len(existing) == 0
	if isDefault && len(existing) > 0 {
		if err := s.store.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}

	entry := &models.UserAddress{
		ID:        uuid.New(),
		UserID:    userID,
		Label:     dto.Label,
		Address:   dto.Address,
		IsDefault: isDefault,
	}
	if err := s.store.CreateAddress(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}
	return entry, nil
}

// Update edits an existing entry scoped to the user.
func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, dto users.AddressDTO) (*models.UserAddress, error) {
	entry, err := s.load(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if !dto.Address.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete")
	}

	if dto.IsDefault && !entry.IsDefault {
		if err := s.store.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
		}
	}

	entry.Label = dto.Label
	entry.Address = dto.Address
	if dto.IsDefault {
		entry.IsDefault = true
	}
	if err := s.store.SaveAddress(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	return entry, nil
}

// Delete removes an entry scoped to the user.
func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.load(ctx, userID, addressID); err != nil {
		return err
	}
	if err := s.store.DeleteAddress(ctx, userID, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

// SetDefault marks one entry as the default shipping address.
func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	entry, err := s.load(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearDefaultAddress(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
	}
	entry.IsDefault = true
	if err := s.store.SaveAddress(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save address")
	}
	return entry, nil
}

func (s *service) load(ctx context.Context, userID, addressID uuid.UUID) (*models.UserAddress, error) {
	entry, err := s.store.FindAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return entry, nil
}
