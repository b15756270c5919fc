package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stayhub/internal/service"
)

// NotificationHandler handles HTTP requests for notifications.
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationResponse is the HTTP response for a stored notification.
type NotificationResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	ActionURL   string `json:"action_url,omitempty"`
	ActionLabel string `json:"action_label,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// GetMine handles GET /v1/notifications
func (h *NotificationHandler) GetMine(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	notifications, err := h.notificationService.GetByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, NotificationResponse{
			ID:          n.ID,
			Title:       n.Title,
			Body:        n.Body,
			ActionURL:   n.ActionURL,
			ActionLabel: n.ActionLabel,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, responses)
}
