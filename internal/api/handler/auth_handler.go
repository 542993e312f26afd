package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intlpay/payments-portal/internal/api/metrics"
	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Metrics
}

func NewAuthHandler(authService ports.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m}
}

// Register creates a new customer account.
//
// @Summary      Register a new customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Customer registration details"
// @Success      201   {object}  messageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.Registration("validation")
		return err
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.Registration("validation")
		return err
	}

	_, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:          req.Name,
		IDNumber:      req.IDNumber,
		AccountNumber: req.AccountNumber,
		Password:      req.Password,
	})
	if err != nil {
		h.metrics.Registration(registrationResult(err))
		return err
	}

	h.metrics.Registration("success")
	return c.JSON(http.StatusCreated, messageResponse{Message: "User registered successfully."})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.Login("validation")
		return err
	}
	if err := c.Validate(&req); err != nil {
		h.metrics.Login("validation")
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.AccountNumber, req.Password)
	if err != nil {
		h.metrics.Login(loginResult(err))
		return err
	}

	h.metrics.Login("success")
	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		Role:      res.Role,
		ExpiresAt: res.ExpiresAt,
		Message:   "Login successful.",
	})
}

func registrationResult(err error) string {
	switch {
	case domain.IsValidation(err):
		return "validation"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case domain.IsValidation(err):
		return "validation"
	default:
		return "error"
	}
}
