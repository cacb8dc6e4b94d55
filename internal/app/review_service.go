package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"stays/internal/domain"
	"stays/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// ReviewService encapsulates review use cases.
type ReviewService struct {
	listings     domain.ListingRepository
	reservations domain.ReservationRepository
	now          func() time.Time
}

// NewReviewService creates a ReviewService backed by the given repositories.
func NewReviewService(listings domain.ListingRepository, reservations domain.ReservationRepository) *ReviewService {
	return &ReviewService{listings: listings, reservations: reservations, now: time.Now}
}

// GetListing returns the listing with its reviews. It backs both the review
// list and the review form.
func (s *ReviewService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, unavailable(err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// ListReviews returns the reviews of a listing in insertion order.
func (s *ReviewService) ListReviews(ctx context.Context, listingID string) ([]domain.Review, error) {
	listing, err := s.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return listing.Reviews, nil
}

// SubmitReview appends a review to the listing if userID holds a
// reservation for it.
func (s *ReviewService) SubmitReview(ctx context.Context, listingID, userID, reviewerName, comments string) (err error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.SubmitReview",
		attribute.String("listing.id", listingID),
		attribute.String("user.id", userID),
	)
	defer func() { observability.EndSpan(span, err) }()
	defer func() { observability.ReviewsTotal.WithLabelValues(outcome(err)).Inc() }()

	if _, err := s.GetListing(ctx, listingID); err != nil {
		return err
	}

	res, err := s.reservations.Find(ctx, listingID, userID)
	if err != nil {
		return unavailable(err)
	}
	if res == nil {
		return ErrNotEntitled
	}

	reviewerName = strings.TrimSpace(reviewerName)
	comments = strings.TrimSpace(comments)
	if err := required("reviewerName", reviewerName); err != nil {
		return err
	}
	if err := required("comments", comments); err != nil {
		return err
	}

	err = s.listings.AppendReview(ctx, listingID, domain.Review{
		ReviewerID:   userID,
		ReviewerName: reviewerName,
		Date:         s.now().UTC(),
		Comments:     comments,
	})
	if errors.Is(err, domain.ErrNotFound) {
		return ErrListingNotFound
	}
	if err != nil {
		return unavailable(err)
	}
	return nil
}
