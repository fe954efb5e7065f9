package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"minishop/models"
	"minishop/store"
	"minishop/utils"
)

const (
	verificationSecretBytes = 10
	resetCodeDigits         = 5
	minPasswordLength       = 8
)

type AuthConfig struct {
	VerificationTTL time.Duration
	BcryptCost      int
}

type SignupInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordInput struct {
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

// AuthService handles sign-up, login and the one-time codes sent by email.
// One-time codes have the form "<user public id>.<secret>"; only a bcrypt
// hash of the whole code is stored.
type AuthService struct {
	store  store.Store
	tokens *utils.TokenIssuer
	mailer *utils.EmailService
	cfg    AuthConfig
	log    *slog.Logger
}

func NewAuthService(s store.Store, tokens *utils.TokenIssuer, mailer *utils.EmailService, cfg AuthConfig, log *slog.Logger) *AuthService {
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 10 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: s, tokens: tokens, mailer: mailer, cfg: cfg, log: log}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: a valid email address is required", ErrInvalidInput)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role, err := s.store.Roles().GetByName(ctx, models.RoleUser)
	if err != nil {
		return nil, fromStore(err, "role")
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		PublicID:  uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Password:  hashed,
	}
	code, err := s.newCode(user, func() (string, error) { return utils.RandomHex(verificationSecretBytes) })
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return fromStore(err, "user with this email")
		}
		return tx.Roles().Assign(ctx, user.PublicID, role.PublicID)
	})
	if err != nil {
		return nil, err
	}
	user.Roles = []string{role.Name}
	s.log.Info("user signed up", "user_id", user.PublicID)

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, code); err != nil {
		s.log.Error("failed to send verification email", "user_id", user.PublicID, "error", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*utils.TokenPair, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, fmt.Errorf("%w: invalid login credentials", ErrUnauthorized)
	}
	if !user.IsEnabled {
		return nil, fmt.Errorf("%w: account not verified", ErrForbidden)
	}
	if user.IsAccountDeleted {
		return nil, fmt.Errorf("%w: account is currently disabled", ErrForbidden)
	}
	return s.issue(ctx, user)
}

// Verify enables the account the code was issued for.
func (s *AuthService) Verify(ctx context.Context, code string) (*utils.TokenPair, error) {
	user, err := s.checkCode(ctx, code)
	if err != nil {
		return nil, err
	}
	user.IsEnabled = true
	user.VerificationToken = ""
	user.TokenExpiredAt = nil
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("account verified", "user_id", user.PublicID)
	return s.issue(ctx, user)
}

func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.newCode(user, func() (string, error) { return utils.RandomHex(verificationSecretBytes) })
	if err != nil {
		return err
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, code); err != nil {
		s.log.Error("failed to send verification email", "user_id", user.PublicID, "error", err)
	}
	return nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := s.newCode(user, func() (string, error) { return utils.RandomDigits(resetCodeDigits) })
	if err != nil {
		return err
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, code); err != nil {
		s.log.Error("failed to send password reset email", "user_id", user.PublicID, "error", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password. Tokens issued before the reset
// stop working.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, in ResetPasswordInput) (*utils.TokenPair, error) {
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	user, err := s.checkCode(ctx, in.OTP)
	if err != nil {
		return nil, err
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user.Password = hashed
	user.ChangedPasswordAt = &now
	user.IsEnabled = true
	user.VerificationToken = ""
	user.TokenExpiredAt = nil
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("password reset", "user_id", user.PublicID)
	return s.issue(ctx, user)
}

// Refresh exchanges a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or malformed refresh token", ErrUnauthorized)
	}
	user, err := s.store.Users().GetByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid or malformed refresh token", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.RefreshToken == "" || user.RefreshToken != utils.HashToken(refreshToken) {
		return nil, fmt.Errorf("%w: invalid or malformed refresh token", ErrUnauthorized)
	}
	if user.IsAccountDeleted {
		return nil, fmt.Errorf("%w: user account has been deactivated", ErrForbidden)
	}
	if issuedBeforePasswordChange(user, claims.IssuedAt) {
		return nil, fmt.Errorf("%w: password was recently changed, please log in again", ErrUnauthorized)
	}
	return s.issue(ctx, user)
}

// Authenticate resolves an access token to the caller, loading the current
// role set from the store.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	user, err := s.store.Users().GetByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.IsAccountDeleted {
		return nil, fmt.Errorf("%w: account is currently disabled", ErrUnauthorized)
	}
	if issuedBeforePasswordChange(user, claims.IssuedAt) {
		return nil, fmt.Errorf("%w: password was recently changed, please log in again", ErrUnauthorized)
	}
	roles, err := s.store.Roles().RoleNamesForUser(ctx, user.PublicID)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: user.PublicID, Email: user.Email, Roles: roles}, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*utils.TokenPair, error) {
	roles, err := s.store.Roles().RoleNamesForUser(ctx, user.PublicID)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.Issue(user.PublicID, user.Email, roles)
	if err != nil {
		return nil, err
	}
	user.RefreshToken = utils.HashToken(pair.RefreshToken)
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return pair, nil
}

// newCode generates a one-time code for user and stores its hash and expiry
// on the user. The caller persists the user.
func (s *AuthService) newCode(user *models.User, secret func() (string, error)) (string, error) {
	sec, err := secret()
	if err != nil {
		return "", err
	}
	code := user.PublicID + "." + sec
	hashed, err := s.hash(code)
	if err != nil {
		return "", err
	}
	expires := time.Now().UTC().Add(s.cfg.VerificationTTL)
	user.VerificationToken = hashed
	user.TokenExpiredAt = &expires
	return code, nil
}

func (s *AuthService) checkCode(ctx context.Context, code string) (*models.User, error) {
	userID, _, ok := strings.Cut(code, ".")
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: invalid or corrupt token provided", ErrUnauthorized)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid or corrupt token provided", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if user.VerificationToken == "" || user.TokenExpiredAt == nil {
		return nil, fmt.Errorf("%w: verification token has expired", ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.VerificationToken), []byte(code)) != nil {
		return nil, fmt.Errorf("%w: invalid or corrupt verification token", ErrUnauthorized)
	}
	if time.Now().After(*user.TokenExpiredAt) {
		return nil, fmt.Errorf("%w: verification token has expired", ErrUnauthorized)
	}
	return user, nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email address is required", ErrInvalidInput)
	}
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, fromStore(err, "user")
	}
	return user, nil
}

func (s *AuthService) hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func issuedBeforePasswordChange(user *models.User, issuedAt int64) bool {
	return user.ChangedPasswordAt != nil && issuedAt < user.ChangedPasswordAt.Unix()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	return nil
}
