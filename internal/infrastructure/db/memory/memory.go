// Package memory holds process-local implementations of the repository ports.
// They enforce the same uniqueness rules as the Mongo store and are used by
// end-to-end tests and local runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// UserRepository is a mutex-guarded credential store keyed by user ID.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	now   func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*domain.User), now: time.Now}
}

func clone(u *domain.User) *domain.User {
	c := *u
	return &c
}

// Create checks both unique keys and inserts under a single lock.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.IDNumber == user.IDNumber {
			return nil, &domain.ConflictError{Field: domain.FieldIDNumber}
		}
		if u.AccountNumber == user.AccountNumber {
			return nil, &domain.ConflictError{Field: domain.FieldAccountNumber}
		}
	}

	stored := clone(user)
	stored.ID = uuid.NewString()
	stored.CreatedAt = r.now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	r.users[stored.ID] = stored
	return clone(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByAccountNumber(_ context.Context, accountNumber string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.AccountNumber == accountNumber })
}

func (r *UserRepository) FindByIDNumberOrAccount(_ context.Context, idNumber, accountNumber string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.IDNumber == idNumber || u.AccountNumber == accountNumber
	})
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ListByRole returns users with the given role, oldest first.
func (r *UserRepository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0)
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, clone(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// PaymentRepository keeps submitted payment instructions by reference.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]domain.PaymentInstruction
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]domain.PaymentInstruction)}
}

func (r *PaymentRepository) Create(_ context.Context, p *domain.PaymentInstruction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[p.Reference]; exists {
		return &domain.ConflictError{Field: "reference"}
	}
	r.payments[p.Reference] = *p
	return nil
}

// Len returns the number of stored payments.
func (r *PaymentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}
