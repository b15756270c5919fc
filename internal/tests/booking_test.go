package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
	"stayhub/internal/service"
)

type bookingFixture struct {
	bookings *MockBookingRepository
	listings *MockListingRepository
	notifier *MockNotifier
	svc      *service.BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings: NewMockBookingRepository(),
		listings: NewMockListingRepository(),
		notifier: NewMockNotifier(),
	}
	f.svc = service.NewBookingService(f.bookings, f.listings, f.notifier)
	return f
}

func (f *bookingFixture) seedListing(id, hostID string, nightly int64) {
	f.listings.AddListing(&domain.Listing{
		ID:            id,
		HostID:        hostID,
		Title:         "Seaside Flat",
		PricePerNight: decimal.NewFromInt(nightly),
	})
}

func TestCreateBooking_PricesAtNightsTimesRate(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.seedListing("listing-1", "host-1", 120)

	checkIn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	booking, err := f.svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID:    "listing-1",
		GuestID:      "guest-1",
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, 4),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decimal.NewFromInt(480)
	if !booking.TotalPrice.Equal(want) {
		t.Errorf("expected total %s, got %s", want, booking.TotalPrice)
	}
	if booking.PaymentStatus != domain.BookingPaymentPending {
		t.Errorf("expected payment status PENDING, got %s", booking.PaymentStatus)
	}
	if booking.BookingStatus != domain.BookingStatusPending {
		t.Errorf("expected booking status PENDING, got %s", booking.BookingStatus)
	}
	if got := f.notifier.ForUser("guest-1"); len(got) != 1 {
		t.Errorf("expected 1 guest notification, got %d", len(got))
	}
}

func TestCreateBooking_SubDayStayChargesOneNight(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.seedListing("listing-1", "host-1", 120)

	checkIn := time.Date(2026, 10, 1, 14, 0, 0, 0, time.UTC)
	booking, err := f.svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID:    "listing-1",
		GuestID:      "guest-1",
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.Add(10 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(120); !booking.TotalPrice.Equal(want) {
		t.Errorf("expected minimum one night (%s), got %s", want, booking.TotalPrice)
	}
}

func TestCreateBooking_RejectsInvertedDateRange(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.seedListing("listing-1", "host-1", 120)

	checkIn := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID:    "listing-1",
		GuestID:      "guest-1",
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, -2),
	})
	if !errors.Is(err, service.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCreateBooking_UnknownListingReturnsNotFound(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()

	checkIn := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := f.svc.CreateBooking(context.Background(), service.CreateBookingRequest{
		ListingID:    "listing-missing",
		GuestID:      "guest-1",
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, 2),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelBooking_CancelsUnpaidBooking(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.bookings.AddBooking(&domain.Booking{
		ID:            "booking-1",
		ListingID:     "listing-1",
		GuestID:       "guest-1",
		PaymentStatus: domain.BookingPaymentPending,
		BookingStatus: domain.BookingStatusPending,
	})

	if err := f.svc.CancelBooking(context.Background(), "guest-1", "booking-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.bookings.GetBooking("booking-1"); got.BookingStatus != domain.BookingStatusCancelled {
		t.Errorf("expected booking CANCELLED, got %s", got.BookingStatus)
	}
}

func TestCancelBooking_RejectsPaidBooking(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.bookings.AddBooking(&domain.Booking{
		ID:            "booking-1",
		ListingID:     "listing-1",
		GuestID:       "guest-1",
		PaymentStatus: domain.BookingPaymentPaid,
		BookingStatus: domain.BookingStatusConfirmed,
	})

	err := f.svc.CancelBooking(context.Background(), "guest-1", "booking-1")
	if !errors.Is(err, service.ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
	}
	if got := f.bookings.GetBooking("booking-1"); got.BookingStatus != domain.BookingStatusConfirmed {
		t.Errorf("expected booking to stay CONFIRMED, got %s", got.BookingStatus)
	}
}

func TestCancelBooking_RejectsNonOwner(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.bookings.AddBooking(&domain.Booking{
		ID:            "booking-1",
		ListingID:     "listing-1",
		GuestID:       "guest-1",
		PaymentStatus: domain.BookingPaymentPending,
		BookingStatus: domain.BookingStatusPending,
	})

	err := f.svc.CancelBooking(context.Background(), "guest-2", "booking-1")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := f.bookings.GetBooking("booking-1"); got.BookingStatus != domain.BookingStatusPending {
		t.Errorf("expected booking untouched, got %s", got.BookingStatus)
	}
}

func TestCancelBooking_RepeatCancelRejected(t *testing.T) {
	t.Parallel()

	f := newBookingFixture()
	f.bookings.AddBooking(&domain.Booking{
		ID:            "booking-1",
		ListingID:     "listing-1",
		GuestID:       "guest-1",
		PaymentStatus: domain.BookingPaymentPending,
		BookingStatus: domain.BookingStatusCancelled,
	})

	err := f.svc.CancelBooking(context.Background(), "guest-1", "booking-1")
	if !errors.Is(err, service.ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
	}
}
