package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryRepository keeps users in process memory. It backs development runs
// without DATABASE_URL and the service tests.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
	wagers []WagerEntry
	now    func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[int64]*User),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = r.now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id int64, username, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && other.Email == email {
			return nil, ErrEmailTaken
		}
	}
	u.Username = username
	u.Email = email
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) CompareAndSetBalance(_ context.Context, id int64, expected, next decimal.Decimal, entry *WagerEntry) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !u.Balance.Equal(expected) {
		return nil, ErrBalanceChanged
	}
	if next.IsNegative() {
		return nil, ErrNegative
	}
	u.Balance = next
	if entry != nil {
		e := *entry
		e.UserID = id
		e.BalanceAfter = next
		if e.CreatedAt.IsZero() {
			e.CreatedAt = r.now()
		}
		r.wagers = append(r.wagers, e)
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryRepository) TopByBalance(_ context.Context, limit int) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Balance.Cmp(out[j].Balance); c != 0 {
			return c > 0
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) ListWagers(_ context.Context, userID int64, limit int) ([]WagerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]WagerEntry, 0)
	for i := len(r.wagers) - 1; i >= 0; i-- {
		if r.wagers[i].UserID != userID {
			continue
		}
		out = append(out, r.wagers[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}
