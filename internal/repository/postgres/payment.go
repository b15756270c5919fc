package postgres

import (
	"context"
	"database/sql"
	"errors"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, amount, method, transaction_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.Amount,
		payment.Method,
		payment.TransactionID,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, booking_id, amount, method, transaction_id, status, created_at, updated_at
		FROM payments WHERE id = $1
	`

	var payment domain.Payment
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.Amount,
		&payment.Method,
		&payment.TransactionID,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &payment, nil
}

// GetByBookingID retrieves all payments recorded for a booking.
func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, booking_id, amount, method, transaction_id, status, created_at, updated_at
		FROM payments WHERE booking_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.BookingID,
			&payment.Amount,
			&payment.Method,
			&payment.TransactionID,
			&payment.Status,
			&payment.CreatedAt,
			&payment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, &payment)
	}

	return payments, rows.Err()
}

// UpdateStatus updates the status of a payment unconditionally.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

// UpdateStatusFrom transitions the payment's status only if it is currently
// in the given source status. The conditional WHERE clause is what serializes
// concurrent webhook deliveries: only the first writer's transition commits.
func (r *PaymentRepository) UpdateStatusFrom(ctx context.Context, id string, from, to domain.PaymentStatus) (bool, error) {
	query := `UPDATE payments SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
