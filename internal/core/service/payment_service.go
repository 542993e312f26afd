package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/intlpay/payments-portal/internal/core/domain"
	"github.com/intlpay/payments-portal/internal/core/ports"
)

// PaymentService records employee payment submissions. Settlement, balances
// and ledgers live outside this system.
type PaymentService struct {
	repo   ports.PaymentRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewPaymentService(repo ports.PaymentRepository, logger zerolog.Logger) *PaymentService {
	return &PaymentService{repo: repo, logger: logger, now: time.Now}
}

// Submit validates the instruction, assigns a reference and stores it.
func (s *PaymentService) Submit(ctx context.Context, in ports.SubmitPaymentInput) (*domain.PaymentInstruction, error) {
	if in.SubmittedBy == "" {
		return nil, domain.ErrUnauthorized
	}

	p := &domain.PaymentInstruction{
		Reference:        "PAY-" + strings.ToUpper(uuid.NewString()),
		RecipientAccount: in.RecipientAccount,
		Amount:           in.Amount,
		Currency:         domain.Currency(in.Currency),
		Description:      strings.TrimSpace(in.Description),
		SubmittedBy:      in.SubmittedBy,
		Status:           domain.PaymentSubmitted,
		SubmittedAt:      s.now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("reference", p.Reference).Msg("failed to record payment")
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.logger.Info().
		Str("reference", p.Reference).
		Str("submitted_by", p.SubmittedBy).
		Str("currency", string(p.Currency)).
		Msg("payment submitted")
	return p, nil
}
