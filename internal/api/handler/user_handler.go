package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intlpay/payments-portal/internal/api/middleware"
	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.userService.Me(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Customers lists every registered customer.
//
// @Summary      List customers
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /user/customers [get]
func (h *UserHandler) Customers(c echo.Context) error {
	users, err := h.userService.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}
