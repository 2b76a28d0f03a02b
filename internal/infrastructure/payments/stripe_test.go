package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/skyline-residence/building-api/internal/core/ports"
)

type fakeIntents struct {
	got *stripe.PaymentIntentParams
	err error
}

func (f *fakeIntents) New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.got = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret_abc"}, nil
}

func TestStripeProcessor_CreatePaymentIntent(t *testing.T) {
	fake := &fakeIntents{}
	p := &StripeProcessor{intents: fake, log: zerolog.Nop()}
	ctx := context.Background()

	secret, err := p.CreatePaymentIntent(ctx, ports.PaymentIntentInput{AmountCents: 125000, Currency: "USD"})
	require.NoError(t, err)
	require.Equal(t, "pi_1_secret_abc", secret)

	require.Equal(t, int64(125000), *fake.got.Amount)
	require.Equal(t, "usd", *fake.got.Currency)
	require.Len(t, fake.got.PaymentMethodTypes, 1)
	require.Equal(t, "card", *fake.got.PaymentMethodTypes[0])
	require.Equal(t, ctx, fake.got.Context)
}

func TestStripeProcessor_Error(t *testing.T) {
	fake := &fakeIntents{err: &stripe.Error{Code: stripe.ErrorCodeAmountTooSmall, Msg: "Amount must be at least $0.50 usd"}}
	p := &StripeProcessor{intents: fake, log: zerolog.Nop()}

	_, err := p.CreatePaymentIntent(context.Background(), ports.PaymentIntentInput{AmountCents: 1, Currency: "usd"})
	require.Error(t, err)

	var serr *stripe.Error
	require.True(t, errors.As(err, &serr))
	require.Equal(t, stripe.ErrorCodeAmountTooSmall, serr.Code)
}
