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
	"stayhub/internal/service"
)

// settleViaIntent drives the happy path up to an open gateway intent and
// returns its id.
func settleViaIntent(t *testing.T, f *engineFixture, bookingID, guestID string) string {
	t.Helper()

	result, err := f.svc.CreatePaymentIntent(context.Background(), service.CreatePaymentIntentRequest{
		UserID:    guestID,
		BookingID: bookingID,
		Amount:    decimal.RequireFromString("500.00"),
		Currency:  "usd",
	})
	if err != nil {
		t.Fatalf("failed to create intent: %v", err)
	}
	return result.PaymentIntentID
}

func deliverWebhook(t *testing.T, f *engineFixture, payload string) error {
	t.Helper()
	return f.svc.HandleWebhook(context.Background(), []byte(payload), signStripePayload(payload))
}

func TestWebhook_SucceededSettlesPaymentAndConfirmsBooking(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	baseline := f.notifier.Count()
	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(payments))
	}
	if payments[0].Status != domain.PaymentStatusSuccess {
		t.Errorf("expected payment SUCCESS, got %s", payments[0].Status)
	}

	booking := f.bookings.GetBooking("booking-42")
	if booking.PaymentStatus != domain.BookingPaymentPaid {
		t.Errorf("expected booking PAID, got %s", booking.PaymentStatus)
	}
	if booking.BookingStatus != domain.BookingStatusConfirmed {
		t.Errorf("expected booking CONFIRMED, got %s", booking.BookingStatus)
	}

	if got := f.notifier.Count() - baseline; got != 2 {
		t.Errorf("expected 2 notifications (guest + host), got %d", got)
	}
	if got := f.notifier.ForUser("host-1"); len(got) != 1 {
		t.Errorf("expected 1 host notification, got %d", len(got))
	}
}

func TestWebhook_DuplicateDeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	afterFirst := f.notifier.Count()

	// Gateway retry with the identical payload must still be accepted.
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if f.payments.CountPayments() != 1 {
		t.Errorf("expected 1 payment row, got %d", f.payments.CountPayments())
	}
	if f.notifier.Count() != afterFirst {
		t.Errorf("expected no additional notifications, got %d new", f.notifier.Count()-afterFirst)
	}
}

func TestWebhook_RedeliveryUnderNewEventIDStillNoOps(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	first := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, first); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	afterFirst := f.notifier.Count()

	// Even when the dedupe store misses (fresh event id), the conditional
	// transition fires exactly once.
	second := intentEventPayload("evt_2", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, second); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if f.notifier.Count() != afterFirst {
		t.Errorf("expected no additional notifications, got %d new", f.notifier.Count()-afterFirst)
	}
}

func TestWebhook_FailedAfterSuccessDoesNotDowngrade(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	succeeded := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, succeeded); err != nil {
		t.Fatalf("succeeded delivery: %v", err)
	}

	failed := intentEventPayload("evt_2", "payment_intent.payment_failed", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, failed); err != nil {
		t.Fatalf("failed delivery: %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusSuccess {
		t.Errorf("late failed event downgraded payment to %s", payments[0].Status)
	}

	booking := f.bookings.GetBooking("booking-42")
	if booking.PaymentStatus != domain.BookingPaymentPaid {
		t.Errorf("expected booking to stay PAID, got %s", booking.PaymentStatus)
	}
}

func TestWebhook_FailedMarksPaymentFailedAndNotifiesGuest(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	baseline := len(f.notifier.ForUser("guest-1"))
	payload := intentEventPayload("evt_1", "payment_intent.payment_failed", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusFailed {
		t.Errorf("expected payment FAILED, got %s", payments[0].Status)
	}

	booking := f.bookings.GetBooking("booking-42")
	if booking.PaymentStatus != domain.BookingPaymentPending {
		t.Errorf("expected booking to stay PENDING, got %s", booking.PaymentStatus)
	}
	if got := len(f.notifier.ForUser("guest-1")) - baseline; got != 1 {
		t.Errorf("expected 1 guest notification, got %d", got)
	}
}

func TestWebhook_CanceledMapsToFailedWithoutNotification(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	baseline := f.notifier.Count()
	payload := intentEventPayload("evt_1", "payment_intent.canceled", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusFailed {
		t.Errorf("expected canceled intent to map onto FAILED, got %s", payments[0].Status)
	}
	if f.notifier.Count() != baseline {
		t.Errorf("expected no notifications for a canceled intent, got %d new", f.notifier.Count()-baseline)
	}
	if booking := f.bookings.GetBooking("booking-42"); booking.BookingStatus != domain.BookingStatusPending {
		t.Errorf("expected booking untouched, got %s", booking.BookingStatus)
	}
}

func TestWebhook_UnknownEventTypeAcknowledged(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")

	payload := `{"id":"evt_1","type":"charge.dispute.created","data":{"object":{"id":"dp_1"}}}`
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("expected unknown event types to be acknowledged, got %v", err)
	}
	if f.payments.CountPayments() != 0 {
		t.Error("expected zero state changes for unknown event type")
	}
}

func TestWebhook_MissingBookingIDDropped(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	payload := fmt.Sprintf(
		`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":%q,"object":"payment_intent","amount":50000,"metadata":{}}}}`,
		intentID,
	)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("expected ack for event without booking metadata, got %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusPending {
		t.Errorf("expected payment untouched, got %s", payments[0].Status)
	}
}

func TestWebhook_UnknownTransactionDropped(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")

	// No local payment exists for this intent: a replayed or out-of-order
	// delivery is dropped, not treated as an error.
	payload := intentEventPayload("evt_1", "payment_intent.succeeded", "pi_stale", "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("expected ack for unmatched transaction, got %v", err)
	}

	if booking := f.bookings.GetBooking("booking-42"); booking.PaymentStatus != domain.BookingPaymentPending {
		t.Errorf("expected booking untouched, got %s", booking.PaymentStatus)
	}
}

func TestWebhook_BadSignatureRejected(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	err := f.svc.HandleWebhook(context.Background(), []byte(payload), "t=12345,v1=deadbeef")

	var verificationErr *gateway.VerificationError
	if !errors.As(err, &verificationErr) {
		t.Fatalf("expected verification error, got %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusPending {
		t.Errorf("forged webhook reached the engine: payment is %s", payments[0].Status)
	}
}

func TestWebhook_ExpiredTimestampRejected(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	stale := time.Now().Add(-time.Hour)
	sig := webhook.ComputeSignature(stale, []byte(payload), testWebhookSecret)
	header := fmt.Sprintf("t=%d,v1=%s", stale.Unix(), hex.EncodeToString(sig))

	err := f.svc.HandleWebhook(context.Background(), []byte(payload), header)

	var verificationErr *gateway.VerificationError
	if !errors.As(err, &verificationErr) {
		t.Fatalf("expected verification error for stale timestamp, got %v", err)
	}
}

func TestWebhook_NotificationFailureDoesNotUndoState(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	f.notifier.CreateError = errors.New("notification store unavailable")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("notification failure must not fail the webhook, got %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusSuccess {
		t.Errorf("expected committed transition to survive, got %s", payments[0].Status)
	}
	if booking := f.bookings.GetBooking("booking-42"); booking.BookingStatus != domain.BookingStatusConfirmed {
		t.Errorf("expected booking CONFIRMED, got %s", booking.BookingStatus)
	}
}

func TestWebhook_EventStoreOutageStillProcessesOnce(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	f.events.MarkError = errors.New("redis: connection refused")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	afterFirst := f.notifier.Count()

	// With the dedupe store down the conditional update is the last line
	// of defense against redelivery.
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	payments, _ := f.payments.GetByBookingID(context.Background(), "booking-42")
	if payments[0].Status != domain.PaymentStatusSuccess {
		t.Errorf("expected payment SUCCESS, got %s", payments[0].Status)
	}
	if f.notifier.Count() != afterFirst {
		t.Errorf("expected no duplicate notifications, got %d new", f.notifier.Count()-afterFirst)
	}
}

func TestBookingInvariant_PaidImpliesConfirmed(t *testing.T) {
	t.Parallel()

	f := newEngineFixture()
	f.seedBooking("booking-42", "guest-1", "host-1")
	intentID := settleViaIntent(t, f, "booking-42", "guest-1")

	payload := intentEventPayload("evt_1", "payment_intent.succeeded", intentID, "booking-42", 50000)
	if err := deliverWebhook(t, f, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookings, _ := f.bookings.GetByGuestID(context.Background(), "guest-1")
	for _, b := range bookings {
		if b.PaymentStatus == domain.BookingPaymentPaid && b.BookingStatus != domain.BookingStatusConfirmed {
			t.Errorf("booking %s is PAID but %s", b.ID, b.BookingStatus)
		}
	}
}
