package repository

import (
	"context"

	"stayhub/internal/domain"
)

// ListingRepository defines the persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	GetAll(ctx context.Context) ([]*domain.Listing, error)
}
