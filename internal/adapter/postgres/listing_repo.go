package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stays/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	selectListingColumns = "SELECT id, name, summary, property_type, bedrooms, minimum_nights, maximum_nights FROM listings"

	queryListingByID = selectListingColumns + " WHERE id = $1"
	searchListings   = selectListingColumns + " WHERE bedrooms >= $1 AND minimum_nights >= $2 AND maximum_nights <= $3"
	insertListing    = `INSERT INTO listings (id, name, summary, property_type, bedrooms, minimum_nights, maximum_nights)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryReviewsByListing = "SELECT listing_id, reviewer_id, reviewer_name, date, comments FROM listing_reviews WHERE listing_id = $1 ORDER BY id"
	queryReviewsIn        = "SELECT listing_id, reviewer_id, reviewer_name, date, comments FROM listing_reviews WHERE listing_id IN (?) ORDER BY id"
	insertReview          = "INSERT INTO listing_reviews (listing_id, reviewer_id, reviewer_name, date, comments) VALUES ($1, $2, $3, $4, $5)"
	listingExists         = "SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)"
)

// ListingRepo implements domain.ListingRepository on DB.
type ListingRepo struct {
	db *DB
}

// NewListingRepo wraps a DB as a ListingRepository.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

var _ domain.ListingRepository = (*ListingRepo)(nil)

type listingRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Summary       string `db:"summary"`
	PropertyType  string `db:"property_type"`
	Bedrooms      int    `db:"bedrooms"`
	MinimumNights int    `db:"minimum_nights"`
	MaximumNights int    `db:"maximum_nights"`
}

func (r listingRow) toDomain() domain.Listing {
	return domain.Listing{
		ID:            r.ID,
		Name:          r.Name,
		Summary:       r.Summary,
		PropertyType:  r.PropertyType,
		Bedrooms:      r.Bedrooms,
		MinimumNights: r.MinimumNights,
		MaximumNights: r.MaximumNights,
		Reviews:       []domain.Review{},
	}
}

type reviewRow struct {
	ListingID    string    `db:"listing_id"`
	ReviewerID   string    `db:"reviewer_id"`
	ReviewerName string    `db:"reviewer_name"`
	Date         time.Time `db:"date"`
	Comments     string    `db:"comments"`
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ReviewerID:   r.ReviewerID,
		ReviewerName: r.ReviewerName,
		Date:         r.Date,
		Comments:     r.Comments,
	}
}

// GetByID returns the listing with its reviews in insertion order.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var row listingRow
	err := r.db.sql.GetContext(ctx, &row, queryListingByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var reviews []reviewRow
	if err := r.db.sql.SelectContext(ctx, &reviews, queryReviewsByListing, id); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	l := row.toDomain()
	for _, rv := range reviews {
		l.Reviews = append(l.Reviews, rv.toDomain())
	}
	return &l, nil
}

// Search returns every listing with at least f.Bedrooms bedrooms whose
// minimum stay is at least f.MinNights and whose maximum stay is at most
// f.MaxNights.
func (r *ListingRepo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	var rows []listingRow
	if err := r.db.sql.SelectContext(ctx, &rows, searchListings, f.Bedrooms, f.MinNights, f.MaxNights); err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		index[row.ID] = len(out)
		ids = append(ids, row.ID)
		out = append(out, row.toDomain())
	}

	query, args, err := sqlx.In(queryReviewsIn, ids)
	if err != nil {
		return nil, err
	}
	var reviews []reviewRow
	if err := r.db.sql.SelectContext(ctx, &reviews, r.db.sql.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	for _, rv := range reviews {
		i := index[rv.ListingID]
		out[i].Reviews = append(out[i].Reviews, rv.toDomain())
	}
	return out, nil
}

// AppendReview adds a review row for the listing.
func (r *ListingRepo) AppendReview(ctx context.Context, listingID string, rev domain.Review) error {
	var exists bool
	if err := r.db.sql.GetContext(ctx, &exists, listingExists, listingID); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	_, err := r.db.sql.ExecContext(ctx, insertReview,
		listingID, rev.ReviewerID, rev.ReviewerName, rev.Date.UTC(), rev.Comments,
	)
	return err
}

// Insert stores a listing and its reviews in one transaction.
func (r *ListingRepo) Insert(ctx context.Context, l domain.Listing) (err error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	tx, err := r.db.sql.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, insertListing,
		l.ID, l.Name, l.Summary, l.PropertyType, l.Bedrooms, l.MinimumNights, l.MaximumNights,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	if err != nil {
		return err
	}
	for _, rev := range l.Reviews {
		if _, err = tx.ExecContext(ctx, insertReview,
			l.ID, rev.ReviewerID, rev.ReviewerName, rev.Date.UTC(), rev.Comments,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
