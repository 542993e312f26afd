package ports

import (
	"context"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// UserRepository is the credential store. Uniqueness of ID number and account
// number is enforced by the store itself; Create reports a violation as a
// *domain.ConflictError.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.User, error)
	// FindByIDNumberOrAccount returns the first record matching either key,
	// or domain.ErrUserNotFound.
	FindByIDNumberOrAccount(ctx context.Context, idNumber, accountNumber string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
}
