// Package payment adapts the Stripe API to the payment workflow.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no secret key was provided.
var ErrNotConfigured = errors.New("payment processor is not configured")

// Stripe creates payment intents with a dedicated API client rather than
// the package-level stripe.Key.
type Stripe struct {
	api *client.API
}

// NewStripe returns an adapter for the given secret key.  An empty key
// yields an adapter whose calls fail with ErrNotConfigured.
func NewStripe(secretKey string) *Stripe {
	if secretKey == "" {
		return &Stripe{}
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{api: sc}
}

// CreateIntent opens a card payment intent for amount minor units and
// returns its client secret.
func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if s.api == nil {
		return "", ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(strings.ToLower(currency)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
