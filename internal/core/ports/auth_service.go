package ports

import (
	"context"
	"time"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// RegisterInput carries the plaintext registration fields.
type RegisterInput struct {
	Name          string
	IDNumber      string
	AccountNumber string
	Password      string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	Role      domain.Role
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, accountNumber, password string) (*LoginResult, error)
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (token string, expiresAt time.Time, err error)
}

// Identity is the verified subject of a session token.
type Identity struct {
	UserID string
	Role   domain.Role
}

// TokenVerifier validates a raw bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (*Identity, error)
}

// UserService exposes read access to stored users.
type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	ListCustomers(ctx context.Context) ([]*domain.User, error)
}
