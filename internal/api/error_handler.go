package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/intlpay/payments-portal/internal/api/handler"
	"github.com/intlpay/payments-portal/internal/core/domain"
)

const msgInternal = "Internal server error."

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"message": "...", "errors": [...]}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	// Boundary validation: every failing field is reported.
	var fields handler.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		return http.StatusBadRequest, handler.ErrorResponse{Message: fields[0].Message, Errors: fields}
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body := handler.ErrorResponse{Message: ve.Message}
		if ve.Field != "" {
			body.Errors = []handler.FieldError{{Field: ve.Field, Message: ve.Message}}
		}
		return http.StatusBadRequest, body
	}

	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		return http.StatusBadRequest, handler.ErrorResponse{Message: ce.Error()}
	}

	// Echo's own errors (bind failures, unknown routes, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return he.Code, handler.ErrorResponse{Message: httpErrorMessage(he)}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, handler.ErrorResponse{Message: "Invalid account number or password."}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Message: "User not found."}
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusForbidden, handler.ErrorResponse{Message: "Access denied. No token provided."}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, handler.ErrorResponse{Message: "Invalid or expired token."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Message: "Forbidden: insufficient role."}
	}

	logUnexpected(log, c, err)
	return http.StatusInternalServerError, handler.ErrorResponse{Message: msgInternal}
}

func httpErrorMessage(he *echo.HTTPError) string {
	if he.Code >= http.StatusInternalServerError {
		return msgInternal
	}
	if s, ok := he.Message.(string); ok {
		return s
	}
	if he.Message == nil {
		return http.StatusText(he.Code)
	}
	return fmt.Sprintf("%v", he.Message)
}

// logUnexpected records the real cause of a 5xx.
func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
