package ports

import (
	"context"

	"github.com/intlpay/payments-portal/internal/core/domain"
)

// PaymentRepository stores submitted payment instructions for audit.
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.PaymentInstruction) error
}
