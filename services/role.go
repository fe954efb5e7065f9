package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"minishop/models"
	"minishop/store"
)

type RoleInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AssignRoleInput struct {
	UserID string `json:"user_public_id"`
	RoleID string `json:"role_public_id"`
}

type RoleService struct {
	store store.Store
	log   *slog.Logger
}

func NewRoleService(s store.Store, log *slog.Logger) *RoleService {
	return &RoleService{store: s, log: log}
}

// List returns every role together with the users holding it.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.store.Roles().List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		if roles[i].Users, err = s.holders(ctx, roles[i].PublicID); err != nil {
			return nil, err
		}
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.store.Roles().GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "role")
	}
	if role.Users, err = s.holders(ctx, id); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) holders(ctx context.Context, roleID string) ([]models.User, error) {
	ids, err := s.store.Roles().UserIDsForRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.store.Users().GetByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (s *RoleService) Create(ctx context.Context, in RoleInput) (*models.Role, error) {
	name := models.NormalizeRoleName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", ErrInvalidInput)
	}
	role := &models.Role{PublicID: uuid.NewString(), Name: name, Description: in.Description}
	if err := s.store.Roles().Create(ctx, role); err != nil {
		return nil, fromStore(err, "role")
	}
	s.log.Info("role created", "role_id", role.PublicID, "name", role.Name)
	return role, nil
}

func (s *RoleService) Edit(ctx context.Context, id string, in RoleInput) (*models.Role, error) {
	role, err := s.store.Roles().GetByID(ctx, id)
	if err != nil {
		return nil, fromStore(err, "role")
	}
	if name := models.NormalizeRoleName(in.Name); name != "" {
		role.Name = name
	}
	if in.Description != "" {
		role.Description = in.Description
	}
	if err := s.store.Roles().Update(ctx, role); err != nil {
		return nil, fromStore(err, "role")
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Roles().Delete(ctx, id); err != nil {
		return fromStore(err, "role")
	}
	s.log.Info("role deleted", "role_id", id)
	return nil
}

// Assign grants a role. Both the user and the role must exist.
func (s *RoleService) Assign(ctx context.Context, in AssignRoleInput) error {
	if err := s.checkPair(ctx, in); err != nil {
		return err
	}
	if err := s.store.Roles().Assign(ctx, in.UserID, in.RoleID); err != nil {
		return fromStore(err, "role assignment")
	}
	s.log.Info("role assigned", "user_id", in.UserID, "role_id", in.RoleID)
	return nil
}

func (s *RoleService) Unassign(ctx context.Context, in AssignRoleInput) error {
	if err := s.checkPair(ctx, in); err != nil {
		return err
	}
	if err := s.store.Roles().Unassign(ctx, in.UserID, in.RoleID); err != nil {
		return fromStore(err, "role assignment")
	}
	s.log.Info("role removed", "user_id", in.UserID, "role_id", in.RoleID)
	return nil
}

func (s *RoleService) checkPair(ctx context.Context, in AssignRoleInput) error {
	if in.UserID == "" || in.RoleID == "" {
		return fmt.Errorf("%w: user and role are required", ErrInvalidInput)
	}
	if _, err := s.store.Users().GetByID(ctx, in.UserID); err != nil {
		return fromStore(err, "user")
	}
	if _, err := s.store.Roles().GetByID(ctx, in.RoleID); err != nil {
		return fromStore(err, "role")
	}
	return nil
}

// RoleNames returns the names of the roles held by a user.
func (s *RoleService) RoleNames(ctx context.Context, userID string) ([]string, error) {
	return s.store.Roles().RoleNamesForUser(ctx, userID)
}
