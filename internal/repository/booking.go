package repository

import (
	"context"

	"stayhub/internal/domain"
)

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByGuestID retrieves all bookings made by a guest.
	GetByGuestID(ctx context.Context, guestID string) ([]*domain.Booking, error)

	// Update persists changes to a booking. The update is guarded by the
	// booking's Version token; ErrVersionConflict is returned when the
	// stored row has moved on since the caller read it.
	Update(ctx context.Context, booking *domain.Booking) error

	// MarkPaid transitions the booking to PAID/CONFIRMED only if its
	// payment status is still PENDING. Returns true if the row was
	// updated; false means a concurrent writer got there first.
	MarkPaid(ctx context.Context, id string) (bool, error)

	// SetPaymentIntentID stores the gateway intent id on the booking.
	SetPaymentIntentID(ctx context.Context, id, intentID string) error
}
