package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/JoshBaneyCS/casino-wagers/internal/db"
)

const pgUniqueViolation = "23505"

// Balances travel as text so NUMERIC values keep their exact digits.
const userColumns = `id, username, email, password_hash, balance::text, created_at`

// PostgresRepository stores users in PostgreSQL.
type PostgresRepository struct {
	db *db.Database
}

// NewPostgresRepository creates a repository over database.
func NewPostgresRepository(database *db.Database) *PostgresRepository {
	return &PostgresRepository{db: database}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u       User
		balance string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &balance, &u.CreatedAt); err != nil {
		return nil, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	u.Balance = b
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, balance)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id, created_at
	`, u.Username, u.Email, u.PasswordHash, u.Balance.String()).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, username, email string) (*User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `
		UPDATE users SET username = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) CompareAndSetBalance(ctx context.Context, id int64, expected, next decimal.Decimal, entry *WagerEntry) (*User, error) {
	if next.IsNegative() {
		return nil, ErrNegative
	}

	var updated *User
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		u, err := scanUser(tx.QueryRow(ctx, `
			UPDATE users SET balance = $3::numeric, updated_at = NOW()
			WHERE id = $1 AND balance = $2::numeric
			RETURNING `+userColumns, id, expected.String(), next.String()))
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("check user: %w", err)
			}
			if !exists {
				return ErrNotFound
			}
			return ErrBalanceChanged
		}
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		if entry != nil {
			createdAt := entry.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO wagers (id, user_id, game, stake, payout, outcome, balance_after, created_at)
				VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7::numeric, $8)
			`, entry.ID, id, entry.Game, entry.Stake.String(), entry.Payout.String(), entry.Outcome, next.String(), createdAt)
			if err != nil {
				return fmt.Errorf("record wager: %w", err)
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) TopByBalance(ctx context.Context, limit int) ([]User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY balance DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("top by balance: %w", err)
	}
	defer rows.Close()

	out := make([]User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListWagers(ctx context.Context, userID int64, limit int) ([]WagerEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, game, stake::text, payout::text, outcome, balance_after::text, created_at
		FROM wagers
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list wagers: %w", err)
	}
	defer rows.Close()

	out := make([]WagerEntry, 0)
	for rows.Next() {
		var (
			e                    WagerEntry
			stake, payout, after string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Game, &stake, &payout, &e.Outcome, &after, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}
		if e.Stake, err = decimal.NewFromString(stake); err != nil {
			return nil, err
		}
		if e.Payout, err = decimal.NewFromString(payout); err != nil {
			return nil, err
		}
		if e.BalanceAfter, err = decimal.NewFromString(after); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
