package ports

import (
	"context"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// SubmitPaymentInput carries a payment instruction from the transport layer.
// SubmittedBy is the authenticated employee's user ID.
type SubmitPaymentInput struct {
	RecipientAccount string
	Amount           float64
	Currency         string
	Description      string
	SubmittedBy      string
}

// PaymentService records payment submissions. It performs no settlement.
type PaymentService interface {
	Submit(ctx context.Context, in SubmitPaymentInput) (*domain.PaymentInstruction, error)
}
