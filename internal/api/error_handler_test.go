package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/intlpay/payments-portal/internal/api/handler"
	"github.com/intlpay/payments-portal/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"domain validation", &domain.ValidationError{Field: "name", Message: "Name must be at least 3 characters long."}, http.StatusBadRequest, "Name must be at least 3 characters long."},
		{"field validation", handler.ValidationErrors{{Field: "idNumber", Message: "ID number must be exactly 13 digits."}}, http.StatusBadRequest, "ID number must be exactly 13 digits."},
		{"conflict", &domain.ConflictError{Field: domain.FieldIDNumber}, http.StatusBadRequest, "ID number already exists."},
		{"wrapped conflict", fmt.Errorf("register: %w", &domain.ConflictError{Field: domain.FieldAccountNumber}), http.StatusBadRequest, "Account number already exists."},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid account number or password."},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, "User not found."},
		{"missing token", domain.ErrMissingToken, http.StatusForbidden, "Access denied. No token provided."},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "Invalid or expired token."},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "Forbidden: insufficient role."},
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload."), http.StatusBadRequest, "Invalid request payload."},
		{"echo 5xx hides detail", echo.NewHTTPError(http.StatusServiceUnavailable, "db pool exhausted"), http.StatusServiceUnavailable, "Internal server error."},
		{"unexpected", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Internal server error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body handler.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Message != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, body.Message)
			}
		})
	}
}

func TestHTTPErrorHandler_LogsUnexpected(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/login", nil), rec)

	NewHTTPErrorHandler(log)(errors.New("secret internal detail"), c)

	if strings.Contains(rec.Body.String(), "secret internal detail") {
		t.Fatalf("internal detail leaked to client: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "secret internal detail") {
		t.Fatalf("expected error to be logged, got %q", buf.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was rewritten: %d %s", rec.Code, rec.Body.String())
	}
}
