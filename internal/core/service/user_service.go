package service

import (
	"context"
	"fmt"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

type UserService struct {
	repo ports.UserRepository
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Me returns the caller's own record.
func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.FindByID(ctx, userID)
}

// ListCustomers returns every customer record. Never nil on success.
func (s *UserService) ListCustomers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.ListByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}
