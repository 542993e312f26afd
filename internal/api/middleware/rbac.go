package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intlpay/payments-portal/internal/api/metrics"
	"github.com/intlpay/payments-portal/internal/core/domain"
)

const msgForbidden = "Forbidden: insufficient role."

// RequireRole lets the request through only when the authenticated identity
// holds one of roles. It must run after Authenticate.
func RequireRole(m *metrics.Metrics, roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				m.AuthorizationDenied("none")
				return echo.NewHTTPError(http.StatusForbidden, msgForbidden).SetInternal(domain.ErrForbidden)
			}
			if _, ok := allowed[id.Role]; !ok {
				m.AuthorizationDenied(string(id.Role))
				return echo.NewHTTPError(http.StatusForbidden, msgForbidden).SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
