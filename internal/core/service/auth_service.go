package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

// MinBcryptCost is the lowest work factor accepted for password hashes.
const MinBcryptCost = 10

// AuthService implements registration, employee provisioning and login.
// Every password hash in the system is produced by hashPassword with the
// configured cost.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	cost   int
	logger zerolog.Logger

	// dummyHash keeps the unknown-account path as slow as a real comparison.
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer, bcryptCost int, logger zerolog.Logger) *AuthService {
	if bcryptCost < MinBcryptCost {
		bcryptCost = MinBcryptCost
	}
	if bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.MaxCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcryptCost)
	return &AuthService{repo: repo, tokens: tokens, cost: bcryptCost, logger: logger, dummyHash: dummy}
}

// Register creates a customer account. Self-service registration can never
// produce any other role.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.create(ctx, in, domain.RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("customer registered")
	return user, nil
}

// ProvisionEmployee creates an employee account. It is only reachable from
// the administrative seeding command, never from the public API.
func (s *AuthService) ProvisionEmployee(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.create(ctx, in, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("employee provisioned")
	return user, nil
}

// create runs validate -> checkUniqueness -> hashPassword -> persist.
func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.User, error) {
	// 1. Validate.
	if err := domain.ValidateRegistration(in.Name, in.IDNumber, in.AccountNumber, in.Password); err != nil {
		return nil, err
	}

	// 2. Check uniqueness. The store's unique indexes remain the real guard;
	// this only avoids hashing for obvious duplicates.
	if err := s.checkUniqueness(ctx, in.IDNumber, in.AccountNumber); err != nil {
		return nil, err
	}

	// 3. Hash.
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	// 4. Persist.
	created, err := s.repo.Create(ctx, &domain.User{
		Name:          domain.NormalizeName(in.Name),
		IDNumber:      in.IDNumber,
		AccountNumber: in.AccountNumber,
		PasswordHash:  hash,
		Role:          role,
	})
	if err != nil {
		if domain.IsConflict(err) {
			s.logger.Warn().Err(err).Msg("registration rejected by unique index")
			return nil, err
		}
		return nil, fmt.Errorf("persist user: %w", err)
	}
	return created, nil
}

func (s *AuthService) checkUniqueness(ctx context.Context, idNumber, accountNumber string) error {
	existing, err := s.repo.FindByIDNumberOrAccount(ctx, idNumber, accountNumber)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check uniqueness: %w", err)
	case existing.IDNumber == idNumber:
		return &domain.ConflictError{Field: domain.FieldIDNumber}
	default:
		return &domain.ConflictError{Field: domain.FieldAccountNumber}
	}
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies an account number and password and issues a session token.
// Unknown accounts and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, accountNumber, password string) (*ports.LoginResult, error) {
	if accountNumber == "" || password == "" {
		return nil, &domain.ValidationError{Message: "Both account number and password are required."}
	}

	user, err := s.repo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Info().Str("user_id", user.ID).Msg("login rejected: password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")
	return &ports.LoginResult{Token: token, Role: user.Role, ExpiresAt: expiresAt}, nil
}
