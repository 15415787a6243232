// =============================================================================
// FILE: internal/users/user.go
// =============================================================================
// User records and the repository contract the services depend on.
//
// Balance is only ever changed through CompareAndSetBalance: the caller states
// the balance it read and the balance it wants, and the write happens only if
// the stored balance still equals the expected value. Two settlements racing
// for the same user can therefore never both apply against the same starting
// balance.
// =============================================================================

package users

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBalanceChanged = errors.New("balance changed concurrently")
	ErrNegative       = errors.New("balance would become negative")
)

// User is a registered player.
type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// WagerEntry is one committed balance movement.
type WagerEntry struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"userId"`
	Game         string          `json:"game"`
	Stake        decimal.Decimal `json:"stake"`
	Payout       decimal.Decimal `json:"payout"`
	Outcome      string          `json:"outcome"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Repository persists users and their wager ledger.
type Repository interface {
	// Create inserts u and fills in ID and CreatedAt.
	// Returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error

	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail matches the email exactly (case-sensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	UpdateProfile(ctx context.Context, id int64, username, email string) (*User, error)

	// CompareAndSetBalance sets the balance to next only if it currently
	// equals expected, and records entry (when non-nil) atomically with it.
	// Returns ErrBalanceChanged when the stored balance differs.
	CompareAndSetBalance(ctx context.Context, id int64, expected, next decimal.Decimal, entry *WagerEntry) (*User, error)

	// TopByBalance lists users ordered by balance, highest first.
	TopByBalance(ctx context.Context, limit int) ([]User, error)

	// ListWagers lists a user's ledger entries, newest first.
	ListWagers(ctx context.Context, userID int64, limit int) ([]WagerEntry, error)

	Count(ctx context.Context) (int, error)
}
