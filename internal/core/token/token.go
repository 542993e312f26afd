// Package token issues and verifies HS256 session tokens.
//
// A token is the only proof of a session. Nothing is stored server-side, so a
// token stays valid until it expires even after the client discards it.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

// DefaultTTL is the lifetime of every issued token.
const DefaultTTL = time.Hour

var ErrEmptySecret = errors.New("token: signing secret must not be empty")

// Claims is the signed payload: subject, role, issued-at and expiry.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a single server-held secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithIssuer sets the "iss" claim written and required by the manager.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

// WithClock replaces time.Now. Used by tests to move across the expiry boundary.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, ttl time.Duration, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue returns a signed token for user and its expiry instant.
func (m *Manager) Issue(user *domain.User) (string, time.Time, error) {
	if user == nil || user.ID == "" {
		return "", time.Time{}, errors.New("token: user id is required")
	}
	if !user.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("token: invalid role %q", user.Role)
	}

	now := m.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(ceilSecond(now.Add(m.ttl)))
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt.Time, nil
}

// ceilSecond rounds t up to a whole second so exp is never before issue+TTL.
func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}

// Parse verifies signature, algorithm, expiry and issuer and returns the claims.
// A token is accepted while now < exp.
func (m *Manager) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !tkn.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Verify implements ports.TokenVerifier.
func (m *Manager) Verify(raw string) (*ports.Identity, error) {
	claims, err := m.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &ports.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
