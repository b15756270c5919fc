package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// CreateNotification contains the parameters for recording a notification.
type CreateNotification struct {
	UserID      string
	Title       string
	Body        string
	ActionURL   string
	ActionLabel string
}

// Notifier is the sink the reconciliation engine hands domain notifications
// to. Delivery is out-of-band; a failure here must never roll back a
// committed state transition, so engine call sites absorb the error.
type Notifier interface {
	Create(ctx context.Context, n CreateNotification) error
}

// NotificationService records notifications for out-of-band delivery.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Create stores a notification for the user.
func (s *NotificationService) Create(ctx context.Context, n CreateNotification) error {
	if n.UserID == "" {
		return ErrInvalidUserID
	}

	notification := &domain.Notification{
		ID:          uuid.New().String(),
		UserID:      n.UserID,
		Title:       n.Title,
		Body:        n.Body,
		ActionURL:   n.ActionURL,
		ActionLabel: n.ActionLabel,
		CreatedAt:   time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	log.Printf("[NOTIFICATION] Recipient=%s, Title=%s, Body=%s", n.UserID, n.Title, n.Body)
	return nil
}

// GetByUser retrieves all notifications for a user.
func (s *NotificationService) GetByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.notificationRepo.GetByUserID(ctx, userID)
}

var _ Notifier = (*NotificationService)(nil)
