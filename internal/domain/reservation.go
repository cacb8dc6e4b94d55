package domain

import (
	"context"
	"time"
)

// Reservation binds one user to one listing.
type Reservation struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listingId"`
	UserID      string    `json:"userId"`
	BookingDate time.Time `json:"bookingDate"`
}

// ReservationRepository is the port for reservation persistence.
//
// Create must return ErrDuplicate when a reservation for the same
// (ListingID, UserID) pair already exists; implementations enforce this in
// the store rather than by a prior read. Find returns (nil, nil) when no
// reservation matches.
type ReservationRepository interface {
	Create(ctx context.Context, listingID, userID string, bookingDate time.Time) (*Reservation, error)
	Find(ctx context.Context, listingID, userID string) (*Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
}
