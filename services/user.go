package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"minishop/models"
	"minishop/store"
)

type ProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AddressInput struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

func (in AddressInput) validate() error {
	if strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.Country) == "" {
		return fmt.Errorf("%w: city and country are required", ErrInvalidInput)
	}
	return nil
}

type UserService struct {
	store      store.Store
	bcryptCost int
	log        *slog.Logger
}

func NewUserService(s store.Store, bcryptCost int, log *slog.Logger) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: s, bcryptCost: bcryptCost, log: log}
}

// Get returns the user with their role names.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	if user.Roles, err = s.store.Roles().RoleNamesForUser(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

// List pages through every user that is not an administrator.
func (s *UserService) List(ctx context.Context, p ListParams) (*Page[models.User], error) {
	q, err := p.query()
	if err != nil {
		return nil, err
	}
	users, total, err := s.store.Users().List(ctx, q, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Roles, err = s.store.Roles().RoleNamesForUser(ctx, users[i].PublicID); err != nil {
			return nil, err
		}
	}
	return newPage(users, total, q), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the old one. Tokens
// issued before the change are rejected from then on.
func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return fromStore(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.OldPassword)) != nil {
		return fmt.Errorf("%w: old password is incorrect", ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.Password = string(hashed)
	user.ChangedPasswordAt = &now
	user.RefreshToken = ""
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	s.log.Info("password changed", "user_id", userID)
	return nil
}

func (s *UserService) Deactivate(ctx context.Context, userID string) error {
	return s.setDeleted(ctx, userID, true)
}

func (s *UserService) Reactivate(ctx context.Context, userID string) error {
	return s.setDeleted(ctx, userID, false)
}

func (s *UserService) setDeleted(ctx context.Context, userID string, deleted bool) error {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return fromStore(err, "user")
	}
	user.IsAccountDeleted = deleted
	if deleted {
		user.RefreshToken = ""
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	s.log.Info("account status changed", "user_id", userID, "deactivated", deleted)
	return nil
}

func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.Users().Delete(ctx, userID); err != nil {
		return fromStore(err, "user")
	}
	s.log.Info("user deleted", "user_id", userID)
	return nil
}

// AddAddress creates the user's address. A user holds at most one.
func (s *UserService) AddAddress(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	if user.Address != nil {
		return nil, fmt.Errorf("%w: address already exists, update it instead", ErrConflict)
	}
	addr := in.toAddress(userID)
	addr.PublicID = uuid.NewString()
	if err := s.store.Users().SaveAddress(ctx, addr); err != nil {
		return nil, fromStore(err, "address")
	}
	return addr, nil
}

func (s *UserService) UpdateAddress(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	if user.Address == nil {
		return nil, fmt.Errorf("%w: address not found", ErrNotFound)
	}
	addr := in.toAddress(userID)
	addr.PublicID = user.Address.PublicID
	if err := s.store.Users().SaveAddress(ctx, addr); err != nil {
		return nil, fromStore(err, "address")
	}
	return addr, nil
}

func (s *UserService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	err := s.store.Users().DeleteAddress(ctx, userID, addressID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: address not found", ErrNotFound)
	}
	return err
}

func (in AddressInput) toAddress(userID string) *models.Address {
	return &models.Address{
		UserID:     userID,
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Country:    strings.TrimSpace(in.Country),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
}
