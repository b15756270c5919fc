package repository

import (
	"context"

	"stayhub/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
// Payments are never deleted; corrections are status changes.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByBookingID retrieves all payments recorded for a booking.
	GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment unconditionally.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error

	// UpdateStatusFrom transitions the payment's status only if it is
	// currently in the given source status. Returns true if the row was
	// updated; false means another writer already moved it and the
	// caller must treat the transition as a no-op.
	UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error)
}
