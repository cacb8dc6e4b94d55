package app

import (
	"context"
	"strconv"
	"strings"

	"stays/internal/domain"
)

// SearchService encapsulates listing search use cases.
type SearchService struct {
	listings domain.ListingRepository
}

// NewSearchService creates a SearchService backed by the given repository.
func NewSearchService(listings domain.ListingRepository) *SearchService {
	return &SearchService{listings: listings}
}

// ParseListingFilter converts raw form values into a ListingFilter.
func ParseListingFilter(bedrooms, minNights, maxNights string) (domain.ListingFilter, error) {
	var f domain.ListingFilter
	for _, p := range []struct {
		name string
		raw  string
		dst  *int
	}{
		{"bedrooms", bedrooms, &f.Bedrooms},
		{"minNights", minNights, &f.MinNights},
		{"maxNights", maxNights, &f.MaxNights},
	} {
		raw := strings.TrimSpace(p.raw)
		if raw == "" {
			return f, &ValidationError{Field: p.name, Reason: "is required"}
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, &ValidationError{Field: p.name, Reason: "must be an integer"}
		}
		*p.dst = n
	}
	return f, nil
}

// Search returns the listings matching f, in no particular order.
func (s *SearchService) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	listings, err := s.listings.Search(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	return listings, nil
}
