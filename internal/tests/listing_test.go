package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stayhub/internal/domain"
	"stayhub/internal/service"
)

func TestGetListing_PopulatesCacheOnMiss(t *testing.T) {
	t.Parallel()

	listings := NewMockListingRepository()
	cache := NewMockListingCache()
	svc := service.NewListingService(listings, cache)

	listings.AddListing(&domain.Listing{
		ID:            "listing-1",
		HostID:        "host-1",
		Title:         "Seaside Flat",
		PricePerNight: decimal.NewFromInt(120),
	})

	listing, err := svc.GetListing(context.Background(), "listing-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !listing.PricePerNight.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected price 120, got %s", listing.PricePerNight)
	}
	if cache.SetCallCount != 1 {
		t.Errorf("expected cache write on miss, got %d writes", cache.SetCallCount)
	}

	// Second read is served from cache.
	if _, err := svc.GetListing(context.Background(), "listing-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.SetCallCount != 1 {
		t.Errorf("expected no second cache write, got %d writes", cache.SetCallCount)
	}
}

func TestGetListing_CacheOutageFallsThroughToStore(t *testing.T) {
	t.Parallel()

	listings := NewMockListingRepository()
	cache := NewMockListingCache()
	cache.GetError = errors.New("redis: connection refused")
	cache.SetError = errors.New("redis: connection refused")
	svc := service.NewListingService(listings, cache)

	listings.AddListing(&domain.Listing{
		ID:            "listing-1",
		HostID:        "host-1",
		Title:         "Seaside Flat",
		PricePerNight: decimal.NewFromInt(120),
	})

	listing, err := svc.GetListing(context.Background(), "listing-1")
	if err != nil {
		t.Fatalf("cache outage must not fail the read, got %v", err)
	}
	if listing.ID != "listing-1" {
		t.Errorf("expected listing-1, got %s", listing.ID)
	}
}

func TestCreateListing_RejectsNonPositiveRate(t *testing.T) {
	t.Parallel()

	svc := service.NewListingService(NewMockListingRepository(), NewMockListingCache())

	_, err := svc.CreateListing(context.Background(), service.CreateListingRequest{
		HostID:        "host-1",
		Title:         "Seaside Flat",
		PricePerNight: decimal.Zero,
	})
	if !errors.Is(err, service.ErrInvalidPaymentAmount) {
		t.Fatalf("expected ErrInvalidPaymentAmount, got %v", err)
	}
}
