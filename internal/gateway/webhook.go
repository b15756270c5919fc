package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// EventKind is the closed set of payment event kinds the engine reacts to.
// Anything else decodes to EventUnknown and is acknowledged without effect.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSucceeded
	EventFailed
	EventCanceled
)

func (k EventKind) String() string {
	switch k {
	case EventSucceeded:
		return "succeeded"
	case EventFailed:
		return "failed"
	case EventCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PaymentEvent is a decoded, verified gateway notification. It is ephemeral:
// the engine consumes it, it is never persisted.
type PaymentEvent struct {
	ID            string
	Kind          EventKind
	TransactionID string
	BookingID     string
	Amount        decimal.Decimal
}

// VerificationError reports a webhook that failed signature verification.
// A forged or stale event must never reach the reconciliation engine.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("webhook verification failed: %s", e.Reason)
}

// WebhookVerifier validates inbound events against the signing secret and
// decodes them into typed payment events. Side-effect-free.
type WebhookVerifier struct {
	signingSecret string
}

// NewWebhookVerifier creates a verifier for the given signing secret.
func NewWebhookVerifier(signingSecret string) *WebhookVerifier {
	return &WebhookVerifier{signingSecret: signingSecret}
}

// Verify checks the timestamp+HMAC signature header against the raw payload
// and decodes the event. Verification fails closed: any mismatch or expired
// timestamp returns a *VerificationError and no event.
func (v *WebhookVerifier) Verify(payload []byte, sigHeader string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, &VerificationError{Reason: err.Error()}
	}

	kind := EventUnknown
	switch event.Type {
	case "payment_intent.succeeded":
		kind = EventSucceeded
	case "payment_intent.payment_failed":
		kind = EventFailed
	case "payment_intent.canceled":
		kind = EventCanceled
	}

	decoded := &PaymentEvent{ID: event.ID, Kind: kind}
	if kind == EventUnknown {
		return decoded, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, &VerificationError{Reason: fmt.Sprintf("malformed payment_intent payload: %v", err)}
	}

	decoded.TransactionID = pi.ID
	decoded.BookingID = pi.Metadata["booking_id"]
	decoded.Amount = decimal.NewFromInt(pi.Amount).Div(minorUnits)

	return decoded, nil
}
