package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	internalRedis "stayhub/internal/redis"
	"stayhub/internal/repository"
)

// ListingCache is the read-through cache for listing lookups.
type ListingCache interface {
	GetListing(ctx context.Context, listingID string) (*internalRedis.CachedListing, error)
	SetListing(ctx context.Context, listing *internalRedis.CachedListing) error
	InvalidateListing(ctx context.Context, listingID string) error
}

// ListingService handles listing operations.
type ListingService struct {
	listingRepo repository.ListingRepository
	cache       ListingCache
}

// NewListingService creates a new ListingService.
func NewListingService(listingRepo repository.ListingRepository, cache ListingCache) *ListingService {
	return &ListingService{listingRepo: listingRepo, cache: cache}
}

// CreateListingRequest contains the parameters for creating a listing.
type CreateListingRequest struct {
	HostID        string
	Title         string
	Location      string
	PricePerNight decimal.Decimal
}

// CreateListing creates a new listing.
func (s *ListingService) CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	if req.HostID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Title == "" {
		return nil, ErrInvalidListingID
	}
	if req.PricePerNight.Sign() <= 0 {
		return nil, ErrInvalidPaymentAmount
	}

	listing := &domain.Listing{
		ID:            uuid.New().String(),
		HostID:        req.HostID,
		Title:         req.Title,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		CreatedAt:     time.Now(),
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// GetListing retrieves a listing, serving from cache when possible.
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	if listingID == "" {
		return nil, ErrInvalidListingID
	}

	if cached, err := s.cache.GetListing(ctx, listingID); err != nil {
		log.Printf("listing cache read failed for %s: %v", listingID, err)
	} else if cached != nil {
		price, err := decimal.NewFromString(cached.PricePerNight)
		if err == nil {
			return &domain.Listing{
				ID:            cached.ID,
				HostID:        cached.HostID,
				Title:         cached.Title,
				Location:      cached.Location,
				PricePerNight: price,
			}, nil
		}
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetListing(ctx, &internalRedis.CachedListing{
		ID:            listing.ID,
		HostID:        listing.HostID,
		Title:         listing.Title,
		Location:      listing.Location,
		PricePerNight: listing.PricePerNight.String(),
	}); err != nil {
		log.Printf("listing cache write failed for %s: %v", listingID, err)
	}

	return listing, nil
}

// GetAllListings retrieves all listings.
func (s *ListingService) GetAllListings(ctx context.Context) ([]*domain.Listing, error) {
	return s.listingRepo.GetAll(ctx)
}
