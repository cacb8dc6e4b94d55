// Package seed generates demo listings for development stores.
package seed

import (
	"context"
	"errors"
	"fmt"

	"stays/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
)

var propertyTypes = []string{"Apartment", "House", "Loft", "Condominium", "Guesthouse", "Villa"}

// Factory builds listings from a seeded faker so runs are reproducible.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Listing builds the i-th demo listing.
func (f *Factory) Listing(i int) domain.Listing {
	minNights := f.faker.Number(1, 7)
	return domain.Listing{
		ID:            fmt.Sprintf("%d", 10000000+i),
		Name:          fmt.Sprintf("%s %s in %s", f.faker.Adjective(), f.faker.RandomString(propertyTypes), f.faker.City()),
		Summary:       f.faker.Sentence(12),
		PropertyType:  f.faker.RandomString(propertyTypes),
		Bedrooms:      f.faker.Number(0, 5),
		MinimumNights: minNights,
		MaximumNights: minNights + f.faker.Number(0, 365),
		Reviews:       []domain.Review{},
	}
}

// Listings inserts n listings into repo. Listings that already exist are
// skipped, so reseeding is harmless. It returns the number inserted.
func Listings(ctx context.Context, repo domain.ListingRepository, f *Factory, n int) (int, error) {
	inserted := 0
	for i := range n {
		err := repo.Insert(ctx, f.Listing(i))
		if errors.Is(err, domain.ErrDuplicate) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("insert listing %d: %w", i, err)
		}
		inserted++
	}
	return inserted, nil
}
