package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (bool, error)
	ReleaseBookingLock(ctx context.Context, bookingID string) error
}

// EventStoreInterface defines the interface for webhook event deduplication.
type EventStoreInterface interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ EventStoreInterface = (*EventStore)(nil)
)
