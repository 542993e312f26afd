package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/intlpay/payments-portal/internal/api/metrics"
	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

const identityKey = "identity"

const (
	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid or expired token."
)

// Authenticate verifies the bearer token and stores the caller's identity in
// the echo context. A missing or malformed Authorization header is answered
// with 403; a token that fails verification with 401.
func Authenticate(verifier ports.TokenVerifier, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				m.TokenRejected("missing")
				return echo.NewHTTPError(http.StatusForbidden, msgNoToken).SetInternal(domain.ErrMissingToken)
			}

			raw, ok := bearerToken(authHeader)
			if !ok {
				m.TokenRejected("malformed")
				return echo.NewHTTPError(http.StatusForbidden, msgNoToken).SetInternal(domain.ErrMissingToken)
			}

			id, err := verifier.Verify(raw)
			if err != nil {
				m.TokenRejected("invalid")
				return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken).SetInternal(err)
			}

			WithIdentity(c, id)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

// WithIdentity stores id on the request context.
func WithIdentity(c echo.Context, id *ports.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity set by Authenticate.
func IdentityFrom(c echo.Context) (*ports.Identity, bool) {
	id, ok := c.Get(identityKey).(*ports.Identity)
	return id, ok && id != nil
}
