package repository

import (
	"context"

	"stayhub/internal/domain"
)

// NotificationRepository defines the persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error)
}
