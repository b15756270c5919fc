package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingPaymentStatus tracks whether a booking has been paid for.
// It only ever moves PENDING -> PAID; refunds affect the payment record,
// never the booking's paid marker.
type BookingPaymentStatus string

const (
	BookingPaymentPending BookingPaymentStatus = "PENDING"
	BookingPaymentPaid    BookingPaymentStatus = "PAID"
)

// BookingStatus represents the confirmation lifecycle of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a guest's reservation of a listing for a date range.
// PaymentIntentID is set once when a gateway intent is created and read
// back to avoid creating a duplicate intent. Version is an optimistic
// concurrency token bumped on every update.
type Booking struct {
	ID              string
	ListingID       string
	GuestID         string
	CheckInDate     time.Time
	CheckOutDate    time.Time
	TotalPrice      decimal.Decimal
	PaymentStatus   BookingPaymentStatus
	BookingStatus   BookingStatus
	PaymentIntentID string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
