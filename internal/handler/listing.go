package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/service"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	listingService *service.ListingService
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// CreateListingRequest is the HTTP request body for creating a listing.
type CreateListingRequest struct {
	Title         string          `json:"title"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

// ListingResponse is the HTTP response for listing operations.
type ListingResponse struct {
	ID            string `json:"id"`
	HostID        string `json:"host_id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	PricePerNight string `json:"price_per_night"`
}

func listingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID,
		HostID:        l.HostID,
		Title:         l.Title,
		Location:      l.Location,
		PricePerNight: l.PricePerNight.StringFixed(2),
	}
}

// CreateListing handles POST /v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	hostID := c.GetHeader("X-User-ID")
	if hostID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "X-User-ID header is required"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), service.CreateListingRequest{
		HostID:        hostID,
		Title:         req.Title,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, listingResponse(listing))
}

// GetListing handles GET /v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, listingResponse(listing))
}

// GetAll handles GET /v1/listings
func (h *ListingHandler) GetAll(c *gin.Context) {
	listings, err := h.listingService.GetAllListings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]ListingResponse, 0, len(listings))
	for _, l := range listings {
		responses = append(responses, listingResponse(l))
	}

	respondJSON(c, http.StatusOK, responses)
}
