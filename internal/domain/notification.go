package domain

import "time"

// Notification is a stored message for a user. Delivery to the user
// (email, push) happens out-of-band; the engine only records it.
type Notification struct {
	ID          string
	UserID      string
	Title       string
	Body        string
	ActionURL   string
	ActionLabel string
	CreatedAt   time.Time
}
