package postgres

import (
	"context"
	"database/sql"

	"stayhub/internal/domain"
)

// NotificationRepository is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, body, action_url, action_label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Title,
		notification.Body,
		notification.ActionURL,
		notification.ActionLabel,
		notification.CreatedAt,
	)

	return err
}

// GetByUserID retrieves all notifications for a user, newest first.
func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, title, body, action_url, action_label, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.ActionURL, &n.ActionLabel, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}
