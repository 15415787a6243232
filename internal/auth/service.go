// =============================================================================
// FILE: internal/auth/service.go
// =============================================================================
// Credential service: registration, login, logout and password changes.
//
// The service owns "email is unique" and never hands password material to
// callers; users.User.PasswordHash is excluded from JSON. It does not touch
// cookies. Handlers create or refresh the session after a successful
// Register or Login.
// =============================================================================

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/JoshBaneyCS/casino-wagers/internal/apperr"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
)

// MinPasswordLength applies to registration and password changes.
const MinPasswordLength = 6

var (
	ErrDuplicateEmail     = apperr.New(apperr.KindDuplicate, "EMAIL_TAKEN", "Email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "INVALID_CREDENTIALS", "Invalid email or password")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "User not found")
	ErrWeakPassword       = apperr.Validation("WEAK_PASSWORD",
		fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	ErrMissingFields = apperr.Validation("VALIDATION_ERROR", "Username, email and password are required")
)

// Service implements the credential operations.
type Service struct {
	repo           users.Repository
	defaultBalance decimal.Decimal
	hashCost       int

	// dummyHash keeps login timing flat for unknown emails.
	dummyHash []byte
}

// NewService creates a credential service.
//
// Parameters:
//   - repo: user storage
//   - defaultBalance: starting balance for new accounts
//   - hashCost: bcrypt cost; 0 selects bcrypt.DefaultCost
func NewService(repo users.Repository, defaultBalance decimal.Decimal, hashCost int) *Service {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), hashCost)
	return &Service{
		repo:           repo,
		defaultBalance: defaultBalance,
		hashCost:       hashCost,
		dummyHash:      dummy,
	}
}

// Register creates an account with the default starting balance.
func (s *Service) Register(ctx context.Context, username, email, password string) (*users.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Balance:      s.defaultBalance,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Msg("user_registered")
	return u, nil
}

// Login verifies an email and password pair.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		log.Info().Int64("user_id", u.ID).Msg("login_failed")
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Logout removes the authenticated user from the session.
func (s *Service) Logout(sess *session.Session) {
	if sess == nil {
		return
	}
	if id, ok := sess.UserID(); ok {
		log.Info().Int64("user_id", id).Msg("user_logged_out")
	}
	sess.ClearUser()
}

// UpdatePassword replaces the credential after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	log.Info().Int64("user_id", userID).Msg("password_changed")
	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*users.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// UpdateProfile changes the display name and email. The new email must not
// belong to another account.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, username, email string) (*users.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, apperr.Validation("VALIDATION_ERROR", "Name and email are required")
	}

	u, err := s.repo.UpdateProfile(ctx, userID, username, email)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, users.ErrEmailTaken):
			return nil, ErrDuplicateEmail
		default:
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return u, nil
}
