package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/gateway"
	"stayhub/internal/service"
)

// maxWebhookBody caps inbound webhook payloads. Stripe events are small.
const maxWebhookBody = 1 << 16

// WebhookHandler receives payment-gateway webhook deliveries.
type WebhookHandler struct {
	paymentService *service.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(paymentService *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// HandleStripeWebhook handles POST /v1/webhooks/stripe.
//
// Response policy drives the gateway's retry behaviour: 200 means processed
// or intentionally ignored (stop retrying), 400 means the signature did not
// verify (semantic rejection, retrying cannot help), 500 means an internal
// fault (retry welcome).
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unreadable payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, sigHeader); err != nil {
		var verificationErr *gateway.VerificationError
		if errors.As(err, &verificationErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: verificationErr.Error()})
			return
		}

		log.Printf("webhook processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
