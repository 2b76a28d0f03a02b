package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyline-residence/building-api/internal/api/metrics"
	"github.com/skyline-residence/building-api/internal/core/domain"
	"github.com/skyline-residence/building-api/internal/core/ports"
)

const (
	paymentIdempotencyScope = "payments"
	paymentIdempotencyTTL   = 24 * time.Hour
	releaseTimeout          = 2 * time.Second
)

type PaymentService struct {
	repo      ports.PaymentRepository
	processor ports.PaymentProcessor
	idem      ports.IdempotencyStore
	currency  string
	logger    zerolog.Logger
}

// NewPaymentService wires the payment use cases. processor and idem may be
// nil: intents then fail with domain.ErrPaymentsDisabled and idempotency
// keys are ignored.
func NewPaymentService(
	repo ports.PaymentRepository,
	processor ports.PaymentProcessor,
	idem ports.IdempotencyStore,
	currency string,
	logger zerolog.Logger,
) *PaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &PaymentService{repo: repo, processor: processor, idem: idem, currency: currency, logger: logger}
}

// CreateIntent opens a card payment for price (major currency units) and
// returns the client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	amount := toMinorUnits(price)
	if amount <= 0 {
		return "", domain.ErrInvalidAmount
	}
	if s.processor == nil {
		return "", domain.ErrPaymentsDisabled
	}

	secret, err := s.processor.CreatePaymentIntent(ctx, ports.PaymentIntentInput{
		AmountCents: amount,
		Currency:    s.currency,
	})
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Int64("amount", amount).Msg("failed to create payment intent")
		return "", fmt.Errorf("%w: %w", domain.ErrPaymentProcessor, err)
	}

	metrics.PaymentIntentsTotal.WithLabelValues("created").Inc()
	return secret, nil
}

func toMinorUnits(price float64) int64 {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return int64(math.Round(price * 100))
}

// Record stores a payment made by payerEmail. An empty payment email is taken
// from the payer; any other email is forbidden. A non-empty idempotencyKey
// seen within 24h yields domain.ErrDuplicatePayment.
func (s *PaymentService) Record(ctx context.Context, payerEmail string, payment domain.Payment, idempotencyKey string) (*domain.InsertResult, error) {
	payment.Email = strings.TrimSpace(payment.Email)
	switch payment.Email {
	case "":
		payment.Email = payerEmail
	case payerEmail:
	default:
		return nil, domain.ErrForbidden
	}

	var claimed string
	if idempotencyKey != "" && s.idem != nil {
		claimKey := payerEmail + ":" + idempotencyKey
		fresh, err := s.idem.Claim(ctx, paymentIdempotencyScope, claimKey, paymentIdempotencyTTL)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("email", payerEmail).Msg("idempotency check failed, recording anyway")
		case !fresh:
			s.logger.Info().Str("email", payerEmail).Str("idempotency_key", idempotencyKey).Msg("duplicate payment skipped")
			return nil, domain.ErrDuplicatePayment
		default:
			claimed = claimKey
		}
	}

	payment.ID = ""
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	res, err := s.repo.Create(ctx, &payment)
	if err != nil {
		s.logger.Error().Err(err).Str("email", payment.Email).Msg("failed to record payment")
		if claimed != "" {
			s.releaseClaim(ctx, claimed)
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	metrics.PaymentsRecordedTotal.Inc()
	s.logger.Info().
		Str("email", payment.Email).
		Str("month", payment.Month).
		Str("transaction_id", payment.TransactionID).
		Msg("payment recorded")
	return res, nil
}

// releaseClaim frees the idempotency key of a payment that was not stored. It
// runs on a fresh deadline since the request context may already be done.
func (s *PaymentService) releaseClaim(ctx context.Context, key string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.idem.Release(releaseCtx, paymentIdempotencyScope, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
	}
}

func (s *PaymentService) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	out, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}
