package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"minishop/models"
	"minishop/store"
)

type RoleSeed struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type AdminSeed struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// SeedFile is the YAML document read from SEED_FILE.
type SeedFile struct {
	Roles []RoleSeed `yaml:"roles"`
	Admin AdminSeed  `yaml:"admin"`
}

// DefaultSeed holds the built-in roles.
func DefaultSeed() SeedFile {
	return SeedFile{Roles: []RoleSeed{
		{Name: models.RoleAdmin, Description: "Full access to every resource"},
		{Name: models.RoleUser, Description: "Shopper"},
		{Name: models.RoleManager, Description: "Store manager"},
		{Name: models.RoleStoreKeeper, Description: "Manages stock"},
		{Name: models.RoleProductManager, Description: "Manages the catalog"},
		{Name: models.RoleSalesManager, Description: "Manages orders and payments"},
		{Name: models.RoleAccountOfficer, Description: "Manages customer accounts"},
	}}
}

// LoadSeedFile reads roles from path, or returns DefaultSeed when path is
// empty.
func LoadSeedFile(path string) (SeedFile, error) {
	if path == "" {
		return DefaultSeed(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	if len(seed.Roles) == 0 {
		seed.Roles = DefaultSeed().Roles
	}
	return seed, nil
}

type Seeder struct {
	store      store.Store
	bcryptCost int
	log        *slog.Logger
}

func NewSeeder(s store.Store, bcryptCost int, log *slog.Logger) *Seeder {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{store: s, bcryptCost: bcryptCost, log: log}
}

// Run creates missing roles and, when credentials are given, an enabled
// administrator. Running it again changes nothing.
func (s *Seeder) Run(ctx context.Context, seed SeedFile) error {
	for _, rs := range seed.Roles {
		name := models.NormalizeRoleName(rs.Name)
		_, err := s.store.Roles().GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		role := &models.Role{PublicID: uuid.NewString(), Name: name, Description: rs.Description}
		if err := s.store.Roles().Create(ctx, role); err != nil && !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
		s.log.Info("role seeded", "name", name)
	}

	if seed.Admin.Email == "" || seed.Admin.Password == "" {
		return nil
	}
	return s.seedAdmin(ctx, seed.Admin)
}

func (s *Seeder) seedAdmin(ctx context.Context, in AdminSeed) error {
	email := normalizeEmail(in.Email)
	_, err := s.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	role, err := s.store.Roles().GetByName(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		PublicID:  uuid.NewString(),
		FirstName: "Admin",
		Email:     email,
		Password:  string(hashed),
		IsEnabled: true,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Users().Create(ctx, admin); err != nil {
			return err
		}
		return tx.Roles().Assign(ctx, admin.PublicID, role.PublicID)
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.log.Info("admin user seeded", "user_id", admin.PublicID, "email", email)
	return nil
}
