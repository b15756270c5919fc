package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stayhub/internal/domain"
	"stayhub/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	ListingID    string `json:"listing_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
}

// BookingResponse is the HTTP response for booking operations.
type BookingResponse struct {
	ID              string `json:"id"`
	ListingID       string `json:"listing_id"`
	GuestID         string `json:"guest_id"`
	CheckInDate     string `json:"check_in_date"`
	CheckOutDate    string `json:"check_out_date"`
	TotalPrice      string `json:"total_price"`
	PaymentStatus   string `json:"payment_status"`
	BookingStatus   string `json:"booking_status"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

func bookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		ListingID:       b.ListingID,
		GuestID:         b.GuestID,
		CheckInDate:     b.CheckInDate.Format(time.DateOnly),
		CheckOutDate:    b.CheckOutDate.Format(time.DateOnly),
		TotalPrice:      b.TotalPrice.StringFixed(2),
		PaymentStatus:   string(b.PaymentStatus),
		BookingStatus:   string(b.BookingStatus),
		PaymentIntentID: b.PaymentIntentID,
	}
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	guestID := c.GetHeader("X-User-ID")
	if guestID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	checkIn, err := time.Parse(time.DateOnly, req.CheckInDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "check_in_date must be YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse(time.DateOnly, req.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "check_out_date must be YYYY-MM-DD"})
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		ListingID:    req.ListingID,
		GuestID:      guestID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, bookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, bookingResponse(booking))
}

// GetMyBookings handles GET /v1/bookings
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	guestID := c.GetHeader("X-User-ID")
	if guestID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	bookings, err := h.bookingService.GetBookingsByGuest(c.Request.Context(), guestID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, bookingResponse(b))
	}

	respondJSON(c, http.StatusOK, responses)
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	guestID := c.GetHeader("X-User-ID")
	if guestID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	if err := h.bookingService.CancelBooking(c.Request.Context(), guestID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
}
