package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusSuccess  PaymentStatus = "SUCCESS"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Terminal reports whether no further webhook-driven transition may leave
// this status. Refunds happen through an explicit API call, not a webhook,
// so SUCCESS counts as terminal here too.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// Payment represents one attempt to collect money for a booking.
// TransactionID carries the gateway intent id once an intent exists; for
// manual payments it is a locally generated correlation id.
type Payment struct {
	ID            string
	BookingID     string
	Amount        decimal.Decimal
	Method        string
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
