package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/JoshBaneyCS/casino-wagers/internal/apperr"
	"github.com/JoshBaneyCS/casino-wagers/internal/session"
	"github.com/JoshBaneyCS/casino-wagers/internal/users"
)

func newService(t *testing.T) (*Service, *users.MemoryRepository) {
	t.Helper()
	repo := users.NewMemoryRepository()
	return NewService(repo, decimal.NewFromInt(1000), bcrypt.MinCost), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == 0 || !u.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("user = %+v", u)
	}
	if u.PasswordHash == "secret1" {
		t.Fatal("password stored in plain text")
	}

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "secret2")
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	if apperr.KindOf(err) != apperr.KindDuplicate {
		t.Fatalf("kind = %s, want duplicate", apperr.KindOf(err))
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("users = %d, want 1", n)
	}
}

func TestRegisterEmailIsCaseSensitive(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "a", "Case@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "b", "case@example.com", "secret1"); err != nil {
		t.Fatalf("register differently cased email: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "x@example.com", "secret1"); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	if _, err := svc.Register(ctx, "x", "x@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}

	u, err := svc.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !u.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s, want 1000", u.Balance)
	}
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name    string
		userID  int64
		current string
		next    string
		want    error
	}{
		{"unknown user", 999, "secret1", "secret2", ErrUserNotFound},
		{"wrong current", u.ID, "nope", "secret2", ErrInvalidCredentials},
		{"weak new", u.ID, "secret1", "abc", ErrWeakPassword},
		{"ok", u.ID, "secret1", "secret2", nil},
	}
	for _, tc := range cases {
		err := svc.UpdatePassword(ctx, tc.userID, tc.current, tc.next)
		if (tc.want == nil && err != nil) || (tc.want != nil && !errors.Is(err, tc.want)) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	if _, err := svc.Login(ctx, "alice@example.com", "secret2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	a, _ := svc.Register(ctx, "alice", "alice@example.com", "secret1")
	if _, err := svc.Register(ctx, "bob", "bob@example.com", "secret1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, a.ID, "alice", "bob@example.com"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	u, err := svc.UpdateProfile(ctx, a.ID, "Alice L", "alice@new.example.com")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Username != "Alice L" || u.Email != "alice@new.example.com" {
		t.Fatalf("profile = %+v", u)
	}
}

func TestLogoutClearsUser(t *testing.T) {
	svc, _ := newService(t)
	store := session.NewStore(session.Options{Secret: "0123456789abcdef"})
	sess, err := store.Create(5)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	svc.Logout(sess)
	if _, ok := sess.UserID(); ok {
		t.Fatal("user still set after logout")
	}
	svc.Logout(nil)
}
