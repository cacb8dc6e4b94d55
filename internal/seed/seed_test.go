package seed

import (
	"context"
	"testing"

	"stays/internal/adapter/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Listing(t *testing.T) {
	f := NewFactory(42)
	for i := range 50 {
		l := f.Listing(i)
		assert.NotEmpty(t, l.ID)
		assert.NotEmpty(t, l.Name)
		assert.GreaterOrEqual(t, l.Bedrooms, 0)
		assert.GreaterOrEqual(t, l.MinimumNights, 1)
		assert.GreaterOrEqual(t, l.MaximumNights, l.MinimumNights)
		assert.NotNil(t, l.Reviews)
	}
}

func TestFactory_Reproducible(t *testing.T) {
	a := NewFactory(7).Listing(3)
	b := NewFactory(7).Listing(3)
	assert.Equal(t, a, b)
}

func TestListings_SkipsExisting(t *testing.T) {
	repo := memory.New().NewListingRepo()
	ctx := context.Background()

	n, err := Listings(ctx, repo, NewFactory(1), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, err = Listings(ctx, repo, NewFactory(1), 12)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	l, err := repo.GetByID(ctx, "10000000")
	require.NoError(t, err)
	require.NotNil(t, l)
}
