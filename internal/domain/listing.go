package domain

import (
	"context"
	"time"
)

// Review is feedback left on a listing after a reservation.
type Review struct {
	ReviewerID   string    `json:"reviewerId,omitempty" bson:"reviewer_id,omitempty"`
	ReviewerName string    `json:"reviewerName" bson:"reviewer_name"`
	Date         time.Time `json:"date" bson:"date"`
	Comments     string    `json:"comments" bson:"comments"`
}

// Listing is a bookable accommodation.
type Listing struct {
	ID            string   `json:"id" bson:"_id"`
	Name          string   `json:"name" bson:"name"`
	Summary       string   `json:"summary" bson:"summary"`
	PropertyType  string   `json:"propertyType" bson:"property_type"`
	Bedrooms      int      `json:"bedrooms" bson:"bedrooms"`
	MinimumNights int      `json:"minimumNights" bson:"minimum_nights"`
	MaximumNights int      `json:"maximumNights" bson:"maximum_nights"`
	Reviews       []Review `json:"reviews" bson:"reviews"`
}

// ListingFilter selects listings by their own stated ranges: at least
// Bedrooms bedrooms, a minimum-nights floor of at least MinNights and a
// maximum-nights ceiling of at most MaxNights. It is not a stay-length query.
type ListingFilter struct {
	Bedrooms  int
	MinNights int
	MaxNights int
}

// Matches reports whether l satisfies the filter.
func (f ListingFilter) Matches(l Listing) bool {
	return l.Bedrooms >= f.Bedrooms &&
		l.MinimumNights >= f.MinNights &&
		l.MaximumNights <= f.MaxNights
}

// ListingRepository is the port for listing persistence.
// GetByID returns (nil, nil) when the listing does not exist.
type ListingRepository interface {
	GetByID(ctx context.Context, id string) (*Listing, error)
	Search(ctx context.Context, f ListingFilter) ([]Listing, error)
	AppendReview(ctx context.Context, listingID string, r Review) error
	Insert(ctx context.Context, l Listing) error
}
