package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventTTL bounds how long a processed webhook event id is remembered.
// Gateway retries stop well within this window.
const EventTTL = 72 * time.Hour

// EventStore remembers processed webhook event ids so a redelivered event
// is acknowledged without being applied twice.
type EventStore struct {
	client *redis.Client
}

// NewEventStore creates a new EventStore.
func NewEventStore(client *redis.Client) *EventStore {
	return &EventStore{client: client}
}

// MarkProcessed records the event id. Returns true if this is the first
// time the event was seen, false if it was already processed.
func (s *EventStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("webhook:event:%s", eventID)

	ok, err := s.client.SetNX(ctx, key, "1", EventTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
