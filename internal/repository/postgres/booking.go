package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, listing_id, guest_id, check_in_date, check_out_date,
	total_price, payment_status, booking_status, payment_intent_id, version, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var booking domain.Booking
	var intentID sql.NullString
	err := row.Scan(
		&booking.ID,
		&booking.ListingID,
		&booking.GuestID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.TotalPrice,
		&booking.PaymentStatus,
		&booking.BookingStatus,
		&intentID,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.PaymentIntentID = intentID.String
	return &booking, nil
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, listing_id, guest_id, check_in_date, check_out_date,
			total_price, payment_status, booking_status, payment_intent_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.ListingID,
		booking.GuestID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.TotalPrice,
		booking.PaymentStatus,
		booking.BookingStatus,
		booking.PaymentIntentID,
		booking.Version,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetByGuestID retrieves all bookings made by a guest.
func (r *BookingRepository) GetByGuestID(ctx context.Context, guestID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE guest_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// Update persists changes to a booking, guarded by the optimistic
// concurrency token. The stored version must match the one the caller
// read; the write bumps it.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET check_in_date = $1, check_out_date = $2, total_price = $3,
			payment_status = $4, booking_status = $5, version = version + 1, updated_at = now()
		WHERE id = $6 AND version = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.TotalPrice,
		booking.PaymentStatus,
		booking.BookingStatus,
		booking.ID,
		booking.Version,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Either the booking is gone or another writer bumped the version.
		if _, err := r.GetByID(ctx, booking.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	booking.Version++
	return nil
}

// MarkPaid transitions the booking to PAID/CONFIRMED only if its payment
// status is still PENDING.
func (r *BookingRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = $1, booking_status = $2, version = version + 1, updated_at = now()
		WHERE id = $3 AND payment_status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.BookingPaymentPaid,
		domain.BookingStatusConfirmed,
		id,
		domain.BookingPaymentPending,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// SetPaymentIntentID stores the gateway intent id on the booking.
func (r *BookingRepository) SetPaymentIntentID(ctx context.Context, id, intentID string) error {
	query := `UPDATE bookings SET payment_intent_id = $1, version = version + 1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, intentID, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
