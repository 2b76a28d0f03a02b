// Package payments adapts card processors to ports.PaymentProcessor.
package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/skyline-residence/building-api/internal/core/ports"
)

// intentCreator is satisfied by the Stripe payment intent client.
type intentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProcessor creates card-only payment intents through the Stripe API.
type StripeProcessor struct {
	intents intentCreator
	log     zerolog.Logger
}

// NewStripeProcessor builds a processor authenticated with secretKey.
func NewStripeProcessor(secretKey string, log zerolog.Logger) *StripeProcessor {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeProcessor{intents: sc.PaymentIntents, log: log}
}

var _ ports.PaymentProcessor = (*StripeProcessor)(nil)

// CreatePaymentIntent returns the client secret of a new intent for in.
func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, in ports.PaymentIntentInput) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(in.AmountCents),
		Currency:           stripe.String(strings.ToLower(in.Currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := p.intents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) {
			p.log.Warn().
				Str("stripe_code", string(serr.Code)).
				Str("stripe_type", string(serr.Type)).
				Str("request_id", serr.RequestID).
				Msg("stripe rejected payment intent")
		}
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}

	p.log.Debug().Str("payment_intent", pi.ID).Int64("amount", in.AmountCents).Msg("payment intent created")
	return pi.ClientSecret, nil
}
