// internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// UserService covers the signed-in shopper's profile and address book.
type UserService struct {
	users     repository.UserRepository
	addresses repository.AddressRepository
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type AddressRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,phone"`
	Street     string `json:"street" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,postal_code"`
	IsDefault  bool   `json:"is_default"`
}

func NewUserService(users repository.UserRepository, addresses repository.AddressRepository) *UserService {
	return &UserService{
		users:     users,
		addresses: addresses,
	}
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	user.Name = strings.TrimSpace(req.Name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	return addresses, nil
}

func (s *UserService) GetAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	address, err := s.addresses.Get(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

// CreateAddress adds an address. A user's first address becomes the
// default.
func (s *UserService) CreateAddress(ctx context.Context, userID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	address := &models.Address{
		BaseModel: models.BaseModel{ID: uuid.New()},
		UserID:    userID,
	}
	req.apply(address)
	if len(existing) == 0 {
		address.IsDefault = true
	}

	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, req *AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	// Editing the default address cannot leave the user without one.
	wasDefault := address.IsDefault
	req.apply(address)
	address.IsDefault = address.IsDefault || wasDefault

	if err := s.addresses.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return address, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.addresses.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.addresses.SetDefault(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (r *AddressRequest) apply(a *models.Address) {
	a.Name = strings.TrimSpace(r.Name)
	a.Phone = strings.TrimSpace(r.Phone)
	a.Street = strings.TrimSpace(r.Street)
	a.City = strings.TrimSpace(r.City)
	a.State = strings.TrimSpace(r.State)
	a.PostalCode = strings.TrimSpace(r.PostalCode)
	a.IsDefault = r.IsDefault
}
