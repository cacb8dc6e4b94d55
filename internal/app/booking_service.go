package app

import (
	"context"
	"errors"
	"time"

	"stays/internal/domain"
	"stays/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// BookingService encapsulates the reservation use cases.
type BookingService struct {
	listings     domain.ListingRepository
	reservations domain.ReservationRepository
	now          func() time.Time
}

// NewBookingService creates a BookingService backed by the given repositories.
func NewBookingService(listings domain.ListingRepository, reservations domain.ReservationRepository) *BookingService {
	return &BookingService{listings: listings, reservations: reservations, now: time.Now}
}

// Book reserves listingID for userID. A second booking of the same pair
// fails with ErrAlreadyBooked; the store's uniqueness constraint decides.
func (s *BookingService) Book(ctx context.Context, listingID, userID string) (_ *domain.Reservation, err error) {
	ctx, span := observability.StartSpan(ctx, "BookingService.Book",
		attribute.String("listing.id", listingID),
		attribute.String("user.id", userID),
	)
	defer func() { observability.EndSpan(span, err) }()
	defer func() { observability.BookingsTotal.WithLabelValues(outcome(err)).Inc() }()

	if err := required("airbnbId", listingID); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, unavailable(err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	res, err := s.reservations.Create(ctx, listingID, userID, s.now().UTC())
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, ErrAlreadyBooked
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return res, nil
}

// ListReservations returns the user's reservations.
func (s *BookingService) ListReservations(ctx context.Context, userID string) ([]domain.Reservation, error) {
	items, err := s.reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return items, nil
}
