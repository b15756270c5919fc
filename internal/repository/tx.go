package repository

import "context"

// TxRunner executes a function with transaction-scoped payment and booking
// repositories. All writes made inside fn commit atomically; any error
// rolls the whole unit back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(payments PaymentRepository, bookings BookingRepository) error) error
}
