package tests

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74/webhook"

	"stayhub/internal/domain"
	"stayhub/internal/gateway"
	"stayhub/internal/repository"
	"stayhub/internal/service"
)

const testWebhookSecret = "whsec_test_secret"

// engineFixture wires a PaymentService against in-memory collaborators.
type engineFixture struct {
	payments *MockPaymentRepository
	bookings *MockBookingRepository
	listings *MockListingRepository
	notifier *MockNotifier
	gw       *MockGatewayClient
	locks    *MockLockStore
	events   *MockEventStore
	svc      *service.PaymentService
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		payments: NewMockPaymentRepository(),
		bookings: NewMockBookingRepository(),
		listings: NewMockListingRepository(),
		notifier: NewMockNotifier(),
		gw:       NewMockGatewayClient(),
		locks:    NewMockLockStore(),
		events:   NewMockEventStore(),
	}

	f.svc = service.NewPaymentService(
		f.payments,
		f.bookings,
		f.listings,
		&MockTxRunner{Payments: f.payments, Bookings: f.bookings},
		f.gw,
		gateway.NewWebhookVerifier(testWebhookSecret),
		f.notifier,
		f.locks,
		f.events,
	)

	return f
}

// seedBooking stores a pending booking with its listing and returns it.
func (f *engineFixture) seedBooking(bookingID, guestID, hostID string) *domain.Booking {
	listing := &domain.Listing{
		ID:            "listing-" + bookingID,
		HostID:        hostID,
		Title:         "Seaside Flat",
		PricePerNight: decimal.NewFromInt(100),
	}
	f.listings.AddListing(listing)

	booking := &domain.Booking{
		ID:            bookingID,
		ListingID:     listing.ID,
		GuestID:       guestID,
		CheckInDate:   time.Now().AddDate(0, 1, 0),
		CheckOutDate:  time.Now().AddDate(0, 1, 5),
		TotalPrice:    decimal.NewFromInt(500),
		PaymentStatus: domain.BookingPaymentPending,
		BookingStatus: domain.BookingStatusPending,
	}
	f.bookings.AddBooking(booking)
	return booking
}

// signStripePayload produces a valid Stripe-Signature header for the payload.
func signStripePayload(payload string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, []byte(payload), testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func intentEventPayload(eventID, eventType, intentID, bookingID string, amountCents int64) string {
	return fmt.Sprintf(
		`{"id":%q,"type":%q,"data":{"object":{"id":%q,"object":"payment_intent","amount":%d,"metadata":{"booking_id":%q}}}}`,
		eventID, eventType, intentID, amountCents, bookingID,
	)
}

func TestInitiatePayment_CreatesPendingPaymentAndNotifiesGuest(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-1", "guest-1", "host-1")

	payment, err := f.svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		BookingID: "booking-1",
		Amount:    decimal.NewFromInt(500),
		Method:    "cash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != domain.PaymentStatusPending {
		t.Errorf("expected status %s, got %s", domain.PaymentStatusPending, payment.Status)
	}
	if payment.TransactionID == "" {
		t.Error("expected a generated transaction id")
	}
	if f.payments.CountPayments() != 1 {
		t.Errorf("expected 1 payment row, got %d", f.payments.CountPayments())
	}
	if got := f.notifier.ForUser("guest-1"); len(got) != 1 {
		t.Errorf("expected 1 guest notification, got %d", len(got))
	}
}

func TestInitiatePayment_RejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-1", "guest-1", "host-1")

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := f.svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
			BookingID: "booking-1",
			Amount:    amount,
			Method:    "cash",
		})
		if !errors.Is(err, service.ErrInvalidPaymentAmount) {
			t.Errorf("amount %s: expected ErrInvalidPaymentAmount, got %v", amount, err)
		}
	}

	if f.payments.CountPayments() != 0 {
		t.Errorf("expected no payment rows, got %d", f.payments.CountPayments())
	}
	if f.notifier.Count() != 0 {
		t.Errorf("expected no notifications, got %d", f.notifier.Count())
	}
}

func TestInitiatePayment_UnknownBookingReturnsNotFound(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()

	_, err := f.svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		BookingID: "booking-ghost",
		Amount:    decimal.NewFromInt(500),
		Method:    "cash",
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInitiatePayment_ReusesOpenPayment(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-1", "guest-1", "host-1")

	first, err := f.svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		BookingID: "booking-1",
		Amount:    decimal.NewFromInt(500),
		Method:    "cash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		BookingID: "booking-1",
		Amount:    decimal.NewFromInt(500),
		Method:    "cash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the open payment to be reused, got %s and %s", first.ID, second.ID)
	}
	if f.payments.CountPayments() != 1 {
		t.Errorf("expected 1 payment row, got %d", f.payments.CountPayments())
	}
	if f.notifier.Count() != 1 {
		t.Errorf("expected 1 notification total, got %d", f.notifier.Count())
	}
}
