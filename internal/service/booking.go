package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// BookingService handles the booking CRUD surface. Payment-side mutations
// of a booking live in PaymentService.
type BookingService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	notifier    Notifier
}

// NewBookingService creates a new BookingService.
func NewBookingService(bookingRepo repository.BookingRepository, listingRepo repository.ListingRepository, notifier Notifier) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	ListingID    string
	GuestID      string
	CheckInDate  time.Time
	CheckOutDate time.Time
}

// CreateBooking creates a PENDING booking priced at nights times the
// listing's nightly rate. Availability conflicts are not resolved here.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if req.ListingID == "" {
		return nil, ErrInvalidListingID
	}
	if req.GuestID == "" {
		return nil, ErrInvalidUserID
	}
	if !req.CheckOutDate.After(req.CheckInDate) {
		return nil, ErrInvalidDateRange
	}

	listing, err := s.listingRepo.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	nights := int64(req.CheckOutDate.Sub(req.CheckInDate).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	now := time.Now()
	booking := &domain.Booking{
		ID:            uuid.New().String(),
		ListingID:     listing.ID,
		GuestID:       req.GuestID,
		CheckInDate:   req.CheckInDate,
		CheckOutDate:  req.CheckOutDate,
		TotalPrice:    listing.PricePerNight.Mul(decimal.NewFromInt(nights)),
		PaymentStatus: domain.BookingPaymentPending,
		BookingStatus: domain.BookingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.notifier.Create(ctx, CreateNotification{
		UserID:      req.GuestID,
		Title:       "Booking Created",
		Body:        fmt.Sprintf("Your booking for %s is awaiting payment.", listing.Title),
		ActionURL:   fmt.Sprintf("/bookings/%s", booking.ID),
		ActionLabel: "Complete Payment",
	}); err != nil {
		log.Printf("failed to create booking notification for user %s: %v", req.GuestID, err)
	}

	return booking, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	return s.bookingRepo.GetByID(ctx, bookingID)
}

// GetBookingsByGuest retrieves all bookings made by a guest.
func (s *BookingService) GetBookingsByGuest(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	if guestID == "" {
		return nil, ErrInvalidUserID
	}

	return s.bookingRepo.GetByGuestID(ctx, guestID)
}

// CancelBooking cancels an unpaid booking. Paid bookings go through the
// refund path instead.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if bookingID == "" {
		return ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.GuestID != userID {
		return ErrUnauthorized
	}
	if booking.PaymentStatus == domain.BookingPaymentPaid || booking.BookingStatus == domain.BookingStatusCancelled {
		return ErrBookingNotCancellable
	}

	booking.BookingStatus = domain.BookingStatusCancelled
	return s.bookingRepo.Update(ctx, booking)
}
