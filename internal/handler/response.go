package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stayhub/internal/gateway"
	"stayhub/internal/repository"
	"stayhub/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository/gateway errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var gatewayErr *gateway.Error

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidBookingID),
		errors.Is(err, service.ErrInvalidListingID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidTransactionID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidDateRange):
		return http.StatusBadRequest

	// Ownership errors
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrPaymentInProgress),
		errors.Is(err, service.ErrBookingNotCancellable),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict

	// Gateway failures surface as bad gateway, never as provider types
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
