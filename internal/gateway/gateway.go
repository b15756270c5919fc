package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorCode classifies a gateway failure locally. Provider error types
// never cross this boundary.
type ErrorCode string

const (
	ErrCodeCardDeclined   ErrorCode = "CARD_DECLINED"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrCodeUnavailable    ErrorCode = "UNAVAILABLE"
	ErrCodeUnknown        ErrorCode = "UNKNOWN"
)

// Error is the local taxonomy for payment-gateway failures.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway error (%s): %s", e.Code, e.Message)
}

// Intent is the gateway's representation of an authorized-but-not-yet-settled
// charge. ClientSecret is handed to the client side to complete the charge.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       decimal.Decimal
	Currency     string
	Status       string
}

// CreateIntentParams carries everything needed to open a payment intent.
// Metadata travels to the gateway and comes back on webhook events.
type CreateIntentParams struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	Metadata    map[string]string
}

// Client is the thin synchronous boundary to the external payment processor.
type Client interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CancelIntent(ctx context.Context, id string) error
}
