package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// minorUnits is the factor between major and minor currency units.
// Zero-decimal currencies are not supported (no currency conversion in scope).
var minorUnits = decimal.NewFromInt(100)

// StripeClient implements Client against the Stripe API. The API key is
// injected at construction; no process-wide stripe.Key is set.
type StripeClient struct {
	api     *client.API
	timeout time.Duration
}

// NewStripeClient creates a Stripe-backed gateway client. Every call is
// bounded by timeout.
func NewStripeClient(secretKey string, timeout time.Duration) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeClient{api: api, timeout: timeout}
}

// CreateIntent opens a payment intent for the given amount.
func (c *StripeClient) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	piParams := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(params.Amount.Mul(minorUnits).Round(0).IntPart()),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if params.Description != "" {
		piParams.Description = stripe.String(params.Description)
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(piParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return intentFromStripe(pi), nil
}

// GetIntent retrieves an existing payment intent.
func (c *StripeClient) GetIntent(ctx context.Context, id string) (*Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pi, err := c.api.PaymentIntents.Get(id, &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return intentFromStripe(pi), nil
}

// CancelIntent cancels a payment intent.
func (c *StripeClient) CancelIntent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.PaymentIntents.Cancel(id, &stripe.PaymentIntentCancelParams{
		Params: stripe.Params{Context: ctx},
	})
	if err != nil {
		return wrapStripeError(err)
	}

	return nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       decimal.NewFromInt(pi.Amount).Div(minorUnits),
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

// wrapStripeError translates Stripe error types into the local taxonomy.
func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return &Error{Code: ErrCodeUnavailable, Message: err.Error()}
	}

	code := ErrCodeUnknown
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		code = ErrCodeCardDeclined
	case stripe.ErrorTypeInvalidRequest:
		code = ErrCodeInvalidRequest
	case stripe.ErrorTypeAPI:
		code = ErrCodeUnavailable
	}
	if stripeErr.Code == stripe.ErrorCodeRateLimit {
		code = ErrCodeRateLimited
	}

	return &Error{Code: code, Message: stripeErr.Msg}
}
