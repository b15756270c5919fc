package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/gateway"
	"stayhub/internal/repository"
)

// bookingLockTTL bounds how long an intent creation may hold a booking lock.
const bookingLockTTL = 30 * time.Second

// BookingLocker guards intent creation for one booking against concurrent
// replicas. Only one caller may be talking to the gateway per booking.
type BookingLocker interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, bookingID string) error
}

// EventDeduper remembers processed webhook event ids across deliveries.
type EventDeduper interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// PaymentService reconciles booking records, gateway transactions and
// asynchronous webhook callbacks into one consistent payment state. All
// payment and booking mutations in the system go through it.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	tx          repository.TxRunner
	gw          gateway.Client
	verifier    *gateway.WebhookVerifier
	notifier    Notifier
	locks       BookingLocker
	events      EventDeduper
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	tx repository.TxRunner,
	gw gateway.Client,
	verifier *gateway.WebhookVerifier,
	notifier Notifier,
	locks BookingLocker,
	events EventDeduper,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		tx:          tx,
		gw:          gw,
		verifier:    verifier,
		notifier:    notifier,
		locks:       locks,
		events:      events,
	}
}

// InitiatePaymentRequest contains the parameters for initiating a manual payment.
type InitiatePaymentRequest struct {
	BookingID string
	Amount    decimal.Decimal
	Method    string
}

// InitiatePayment creates a PENDING payment for a booking without contacting
// the gateway (manual payment methods). An existing PENDING payment for the
// booking is returned as-is: a booking carries at most one open payment.
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*domain.Payment, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if req.Method == "" {
		return nil, ErrInvalidPaymentMethod
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusPending {
			// Idempotent: the open payment is the payment.
			return p, nil
		}
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: uuid.New().String(),
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.notify(ctx, CreateNotification{
		UserID:      booking.GuestID,
		Title:       "Payment Initiated",
		Body:        fmt.Sprintf("Payment of %s initiated for your booking.", req.Amount.StringFixed(2)),
		ActionURL:   fmt.Sprintf("/payment/%s", booking.ID),
		ActionLabel: "View Payment",
	})

	return payment, nil
}

// CreatePaymentIntentRequest contains the parameters for creating a gateway intent.
type CreatePaymentIntentRequest struct {
	UserID    string
	BookingID string
	Amount    decimal.Decimal
	Currency  string
}

// PaymentIntentResult is returned to the caller so the client side can
// complete the charge.
type PaymentIntentResult struct {
	ClientSecret    string
	PaymentIntentID string
	Amount          decimal.Decimal
	Currency        string
}

// CreatePaymentIntent creates a gateway payment intent and the matching
// PENDING payment row. If the booking already carries an intent, the
// existing intent is fetched and returned instead of creating a second
// one; this is the primary duplicate-intent guard.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntentResult, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.Currency == "" {
		return nil, ErrInvalidCurrency
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != req.UserID {
		return nil, ErrUnauthorized
	}

	payments, err := s.paymentRepo.GetByBookingID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		if p.TransactionID == "" || booking.PaymentIntentID == "" {
			continue
		}
		// An intent already exists for this booking: return it rather than
		// creating a second PENDING payment.
		intent, err := s.gw.GetIntent(ctx, booking.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		return &PaymentIntentResult{
			ClientSecret:    intent.ClientSecret,
			PaymentIntentID: intent.ID,
			Amount:          p.Amount,
			Currency:        req.Currency,
		}, nil
	}

	if req.Amount.Sign() <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	// The lock keeps two concurrent calls for one booking from both
	// reaching the gateway. Redis being down degrades to the intent-id
	// guard above rather than blocking payments.
	acquired, err := s.locks.AcquireBookingLock(ctx, req.BookingID, bookingLockTTL)
	if err != nil {
		log.Printf("booking lock unavailable for booking %s: %v", req.BookingID, err)
	} else if !acquired {
		return nil, ErrPaymentInProgress
	} else {
		defer func() {
			if err := s.locks.ReleaseBookingLock(ctx, req.BookingID); err != nil {
				log.Printf("failed to release booking lock for %s: %v", req.BookingID, err)
			}
		}()
	}

	// Gateway first: the payment row is inserted only once an intent
	// exists, so a timed-out gateway call leaves no half-created payment.
	intent, err := s.gw.CreateIntent(ctx, gateway.CreateIntentParams{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: fmt.Sprintf("Payment for booking #%s", booking.ID),
		Metadata: map[string]string{
			"booking_id": booking.ID,
			"user_id":    req.UserID,
		},
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		Amount:        req.Amount,
		Method:        "stripe",
		TransactionID: intent.ID,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.SetPaymentIntentID(ctx, booking.ID, intent.ID); err != nil {
		return nil, err
	}

	s.notify(ctx, CreateNotification{
		UserID: booking.GuestID,
		Title:  "Payment Initiated",
		Body:   fmt.Sprintf("A payment of %s has been initiated for booking %s.", req.Amount.StringFixed(2), booking.ID),
	})

	return &PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          req.Amount,
		Currency:        req.Currency,
	}, nil
}

// ConfirmPayment is the manual confirmation path: it applies the same
// transition as a succeeded webhook for the payment matching transactionID.
func (s *PaymentService) ConfirmPayment(ctx context.Context, bookingID, transactionID string) error {
	if bookingID == "" {
		return ErrInvalidBookingID
	}
	if transactionID == "" {
		return ErrInvalidTransactionID
	}

	payment, err := s.findPaymentByTransaction(ctx, bookingID, transactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		return repository.ErrNotFound
	}

	applied, err := s.settlePayment(ctx, payment.ID, bookingID)
	if err != nil {
		return err
	}
	if !applied {
		// Already settled; confirming again is a no-op.
		return nil
	}

	s.notifyPaymentConfirmed(ctx, bookingID)
	return nil
}

// RefundPayment marks a payment as refunded. The booking's confirmation is
// left untouched: refunds correct the payment record, not the stay.
// Note: no guard is applied against refunding a payment that never
// succeeded; callers own that check today.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded); err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, payment.BookingID)
	if err != nil {
		log.Printf("refund recorded but booking %s lookup failed: %v", payment.BookingID, err)
		return nil
	}

	s.notify(ctx, CreateNotification{
		UserID:      booking.GuestID,
		Title:       "Payment Refunded",
		Body:        "Your refund has been processed successfully.",
		ActionURL:   "/booking",
		ActionLabel: "View Bookings",
	})

	return nil
}

// CancelGatewayPayment cancels a gateway intent. The ledger is not touched;
// the gateway reports the cancellation back through a webhook.
func (s *PaymentService) CancelGatewayPayment(ctx context.Context, intentID string) error {
	if intentID == "" {
		return ErrInvalidTransactionID
	}

	return s.gw.CancelIntent(ctx, intentID)
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// HandleWebhook verifies, dedupes and applies a gateway webhook delivery.
// A nil return means processed or intentionally ignored; the HTTP layer
// maps that to 200 so the gateway stops retrying.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.verifier.Verify(payload, sigHeader)
	if err != nil {
		return err
	}

	if event.Kind == gateway.EventUnknown {
		// Forward compatibility: acknowledge event types we don't handle.
		log.Printf("ignoring unhandled webhook event type (event %s)", event.ID)
		return nil
	}

	if event.ID != "" {
		first, err := s.events.MarkProcessed(ctx, event.ID)
		if err != nil {
			// Dedupe store down: the conditional status updates below still
			// make redelivery safe, so keep going.
			log.Printf("event dedupe unavailable for %s: %v", event.ID, err)
		} else if !first {
			log.Printf("webhook event %s already processed, acknowledging", event.ID)
			return nil
		}
	}

	if event.BookingID == "" {
		// An event we cannot tie to a booking is dropped, not retried.
		log.Printf("webhook event %s (%s) has no booking_id metadata, dropping", event.ID, event.Kind)
		return nil
	}

	switch event.Kind {
	case gateway.EventSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case gateway.EventFailed:
		return s.handlePaymentFailed(ctx, event)
	case gateway.EventCanceled:
		return s.handlePaymentCanceled(ctx, event)
	default:
		return nil
	}
}

// handlePaymentSucceeded settles the payment and confirms the booking, then
// notifies guest and host. The state write commits before any notification
// is attempted.
func (s *PaymentService) handlePaymentSucceeded(ctx context.Context, event *gateway.PaymentEvent) error {
	payment, err := s.findPaymentByTransaction(ctx, event.BookingID, event.TransactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		// Out-of-order or replayed delivery with no local record: drop it.
		log.Printf("no payment with transaction %s for booking %s, dropping succeeded event", event.TransactionID, event.BookingID)
		return nil
	}

	applied, err := s.settlePayment(ctx, payment.ID, event.BookingID)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("payment %s already settled, acknowledging duplicate succeeded event", payment.ID)
		return nil
	}

	s.notifyPaymentConfirmed(ctx, event.BookingID)
	return nil
}

// handlePaymentFailed marks the payment failed and tells the guest.
func (s *PaymentService) handlePaymentFailed(ctx context.Context, event *gateway.PaymentEvent) error {
	payment, err := s.findPaymentByTransaction(ctx, event.BookingID, event.TransactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("no payment with transaction %s for booking %s, dropping failed event", event.TransactionID, event.BookingID)
		return nil
	}

	applied, err := s.paymentRepo.UpdateStatusFrom(ctx, payment.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed)
	if err != nil {
		return err
	}
	if !applied {
		// A failed event after success must not downgrade the payment.
		log.Printf("payment %s no longer pending, dropping failed event", payment.ID)
		return nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, event.BookingID)
	if err != nil {
		log.Printf("payment %s marked failed but booking lookup failed: %v", payment.ID, err)
		return nil
	}

	s.notify(ctx, CreateNotification{
		UserID:      booking.GuestID,
		Title:       "Payment Failed",
		Body:        fmt.Sprintf("Your payment for booking #%s failed. Please try again or contact support.", booking.ID),
		ActionURL:   fmt.Sprintf("/bookings/%s", booking.ID),
		ActionLabel: "Retry Payment",
	})

	return nil
}

// handlePaymentCanceled maps a canceled intent onto the FAILED state.
// No booking change and no notification; the cancellation was requested.
func (s *PaymentService) handlePaymentCanceled(ctx context.Context, event *gateway.PaymentEvent) error {
	payment, err := s.findPaymentByTransaction(ctx, event.BookingID, event.TransactionID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("no payment with transaction %s for booking %s, dropping canceled event", event.TransactionID, event.BookingID)
		return nil
	}

	applied, err := s.paymentRepo.UpdateStatusFrom(ctx, payment.ID, domain.PaymentStatusPending, domain.PaymentStatusFailed)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("payment %s no longer pending, dropping canceled event", payment.ID)
	}

	return nil
}

// settlePayment transitions the payment to SUCCESS and the booking to
// PAID/CONFIRMED in one atomic commit. Returns false when the payment was
// already settled by an earlier delivery; in that case nothing is written.
func (s *PaymentService) settlePayment(ctx context.Context, paymentID, bookingID string) (bool, error) {
	var applied bool

	err := s.tx.WithinTx(ctx, func(payments repository.PaymentRepository, bookings repository.BookingRepository) error {
		var err error
		applied, err = payments.UpdateStatusFrom(ctx, paymentID, domain.PaymentStatusPending, domain.PaymentStatusSuccess)
		if err != nil {
			return err
		}
		if !applied {
			return nil
		}

		if _, err := bookings.MarkPaid(ctx, bookingID); err != nil {
			return err
		}
		return nil
	})

	return applied, err
}

// findPaymentByTransaction locates the payment whose transaction id matches,
// scoped to the booking. Returns nil, nil when no such payment exists.
func (s *PaymentService) findPaymentByTransaction(ctx context.Context, bookingID, transactionID string) (*domain.Payment, error) {
	payments, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		if p.TransactionID == transactionID {
			return p, nil
		}
	}

	return nil, nil
}

// notifyPaymentConfirmed sends the guest and host confirmations. Each send
// is independent: one failing cannot block the other, and neither can undo
// the committed transition.
func (s *PaymentService) notifyPaymentConfirmed(ctx context.Context, bookingID string) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		log.Printf("payment settled but booking %s lookup failed: %v", bookingID, err)
		return
	}

	s.notify(ctx, CreateNotification{
		UserID:      booking.GuestID,
		Title:       "Payment Confirmed",
		Body:        fmt.Sprintf("Your payment for booking #%s was successful! Get ready for your stay.", booking.ID),
		ActionURL:   fmt.Sprintf("/bookings/%s", booking.ID),
		ActionLabel: "View Booking",
	})

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		log.Printf("host notification skipped, listing %s lookup failed: %v", booking.ListingID, err)
		return
	}

	s.notify(ctx, CreateNotification{
		UserID:      listing.HostID,
		Title:       "New Booking Confirmed",
		Body:        fmt.Sprintf("You have a new confirmed booking for %s. Check-in: %s", listing.Title, booking.CheckInDate.Format("Jan 02, 2006")),
		ActionURL:   fmt.Sprintf("/listings/%s", listing.ID),
		ActionLabel: "View Listing",
	})
}

// notify records a notification and absorbs any failure. Notification
// delivery never fails the enclosing operation.
func (s *PaymentService) notify(ctx context.Context, n CreateNotification) {
	if err := s.notifier.Create(ctx, n); err != nil {
		log.Printf("failed to create notification for user %s: %v", n.UserID, err)
	}
}
