package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intlpay/payments-portal/internal/api/metrics"
	"github.com/intlpay/payments-portal/internal/api/middleware"
	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

type PaymentHandler struct {
	paymentService ports.PaymentService
	metrics        *metrics.Metrics
}

func NewPaymentHandler(paymentService ports.PaymentService, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, metrics: m}
}

// Submit records an international payment instruction for later processing.
//
// @Summary      Submit a payment
// @Tags         employee
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      paymentRequest  true  "Payment instruction"
// @Success      200   {object}  paymentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Router       /employee/payments [post]
func (h *PaymentHandler) Submit(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.paymentService.Submit(c.Request().Context(), ports.SubmitPaymentInput{
		RecipientAccount: req.RecipientAccount,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Description:      req.Description,
		SubmittedBy:      id.UserID,
	})
	if err != nil {
		return err
	}

	h.metrics.PaymentSubmitted(string(p.Currency))
	return c.JSON(http.StatusOK, paymentResponse{
		Message:          "Payment submitted successfully.",
		Reference:        p.Reference,
		Status:           string(p.Status),
		RecipientAccount: p.RecipientAccount,
		Amount:           p.Amount,
		Currency:         string(p.Currency),
		SubmittedAt:      p.SubmittedAt.Format(time.RFC3339),
	})
}
