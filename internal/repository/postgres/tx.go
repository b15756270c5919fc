package postgres

import (
	"context"
	"database/sql"

	"stayhub/internal/repository"
)

// TxManager implements repository.TxRunner on top of database/sql
// transactions.
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn with transaction-scoped repositories and commits if fn
// returns nil.
func (m *TxManager) WithinTx(ctx context.Context, fn func(payments repository.PaymentRepository, bookings repository.BookingRepository) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(NewPaymentRepositoryWithTx(tx), NewBookingRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.TxRunner = (*TxManager)(nil)
