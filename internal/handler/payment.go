package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID            string `json:"id"`
	BookingID     string `json:"booking_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func paymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount.StringFixed(2),
		Method:        p.Method,
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
	}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	BookingID string          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
}

// InitiatePayment handles POST /v1/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.paymentService.InitiatePayment(c.Request.Context(), service.InitiatePaymentRequest{
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Method:    req.Method,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, paymentResponse(payment))
}

// CreatePaymentIntentRequest is the HTTP request body for creating a gateway intent.
type CreatePaymentIntentRequest struct {
	BookingID string          `json:"booking_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// PaymentIntentResponse is the HTTP response for intent creation.
type PaymentIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

// CreatePaymentIntent handles POST /v1/payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	result, err := h.paymentService.CreatePaymentIntent(c.Request.Context(), service.CreatePaymentIntentRequest{
		UserID:    userID,
		BookingID: req.BookingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentIntentResponse{
		ClientSecret:    result.ClientSecret,
		PaymentIntentID: result.PaymentIntentID,
		Amount:          result.Amount.StringFixed(2),
		Currency:        result.Currency,
	})
}

// ConfirmPaymentRequest is the HTTP request body for manual confirmation.
type ConfirmPaymentRequest struct {
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
}

// ConfirmPayment handles POST /v1/payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.paymentService.ConfirmPayment(c.Request.Context(), req.BookingID, req.TransactionID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"confirmed": true})
}

// RefundPayment handles POST /v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	paymentID := c.Param("id")

	if err := h.paymentService.RefundPayment(c.Request.Context(), paymentID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"refunded": true})
}

// CancelPaymentIntent handles POST /v1/payments/intent/:id/cancel
func (h *PaymentHandler) CancelPaymentIntent(c *gin.Context) {
	intentID := c.Param("id")

	if err := h.paymentService.CancelGatewayPayment(c.Request.Context(), intentID); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}
