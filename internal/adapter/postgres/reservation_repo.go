package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"stays/internal/domain"

	"github.com/google/uuid"
)

const (
	insertReservation = "INSERT INTO reservations (id, listing_id, user_id, booking_date) VALUES ($1, $2, $3, $4)"
	queryReservation  = "SELECT id, listing_id, user_id, booking_date FROM reservations WHERE listing_id = $1 AND user_id = $2"
	queryUserBookings = "SELECT id, listing_id, user_id, booking_date FROM reservations WHERE user_id = $1 ORDER BY booking_date DESC"
)

// ReservationRepo implements domain.ReservationRepository on DB.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo wraps a DB as a ReservationRepository.
func NewReservationRepo(db *DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

var _ domain.ReservationRepository = (*ReservationRepo)(nil)

type reservationRow struct {
	ID          string    `db:"id"`
	ListingID   string    `db:"listing_id"`
	UserID      string    `db:"user_id"`
	BookingDate time.Time `db:"booking_date"`
}

func (r reservationRow) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:          r.ID,
		ListingID:   r.ListingID,
		UserID:      r.UserID,
		BookingDate: r.BookingDate,
	}
}

// Create inserts a reservation. The UNIQUE (listing_id, user_id) constraint
// rejects a second booking of the same pair with domain.ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, listingID, userID string, bookingDate time.Time) (*domain.Reservation, error) {
	res := domain.Reservation{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		UserID:      userID,
		BookingDate: bookingDate.UTC(),
	}
	_, err := r.db.sql.ExecContext(ctx, insertReservation, res.ID, res.ListingID, res.UserID, res.BookingDate)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Find returns the reservation for the pair, or nil when none exists.
func (r *ReservationRepo) Find(ctx context.Context, listingID, userID string) (*domain.Reservation, error) {
	var row reservationRow
	err := r.db.sql.GetContext(ctx, &row, queryReservation, listingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := row.toDomain()
	return &res, nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	var rows []reservationRow
	if err := r.db.sql.SelectContext(ctx, &rows, queryUserBookings, userID); err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
