// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"stays/internal/domain"

	"github.com/google/uuid"
)

type reservationKey struct {
	listingID string
	userID    string
}

// DB implements an in-memory database storage. A single mutex guards all
// collections, so check-and-insert sequences are atomic.
type DB struct {
	mu           sync.Mutex
	users        []*domain.User
	listings     map[string]*domain.Listing
	listingOrder []string
	reservations map[reservationKey]domain.Reservation
	sessions     map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		listings:     make(map[string]*domain.Listing),
		reservations: make(map[reservationKey]domain.Reservation),
		sessions:     make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ListingRepository = (*ListingRepo)(nil)
var _ domain.ReservationRepository = (*ReservationRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == nu.Username {
			return nil, domain.ErrDuplicate
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		DateOfBirth:  nu.DateOfBirth,
		Username:     nu.Username,
		PasswordHash: nu.PasswordHash,
		PhoneNumber:  nu.PhoneNumber,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// UpdateProfile overwrites the mutable profile fields.
func (db *DB) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			u.FirstName = p.FirstName
			u.LastName = p.LastName
			u.PhoneNumber = p.PhoneNumber
			return nil
		}
	}
	return domain.ErrNotFound
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- ListingRepository ---

// ListingRepo implements listing persistence.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new listing repository.
func (db *DB) NewListingRepo() *ListingRepo {
	return &ListingRepo{db: db}
}

// Insert stores a listing, generating an ID when empty.
func (r *ListingRepo) Insert(ctx context.Context, l domain.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if _, ok := r.db.listings[l.ID]; ok {
		return domain.ErrDuplicate
	}
	l.Reviews = append([]domain.Review(nil), l.Reviews...)
	r.db.listings[l.ID] = &l
	r.db.listingOrder = append(r.db.listingOrder, l.ID)
	return nil
}

// GetByID returns a copy of the listing.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.listings[id]
	if !ok {
		return nil, nil
	}
	cp := copyListing(l)
	return &cp, nil
}

// Search returns the listings matching f.
func (r *ListingRepo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := make([]domain.Listing, 0)
	for _, id := range r.db.listingOrder {
		l := r.db.listings[id]
		if f.Matches(*l) {
			out = append(out, copyListing(l))
		}
	}
	return out, nil
}

// AppendReview adds r to the end of the listing's reviews.
func (r *ListingRepo) AppendReview(ctx context.Context, listingID string, rev domain.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.listings[listingID]
	if !ok {
		return domain.ErrNotFound
	}
	l.Reviews = append(l.Reviews, rev)
	return nil
}

func copyListing(l *domain.Listing) domain.Listing {
	cp := *l
	cp.Reviews = append([]domain.Review(nil), l.Reviews...)
	return cp
}

// --- ReservationRepository ---

// ReservationRepo implements reservation persistence.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo creates a new reservation repository.
func (db *DB) NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create inserts a reservation unless one exists for the same pair.
func (r *ReservationRepo) Create(ctx context.Context, listingID, userID string, bookingDate time.Time) (*domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	key := reservationKey{listingID: listingID, userID: userID}
	if _, ok := r.db.reservations[key]; ok {
		return nil, domain.ErrDuplicate
	}
	res := domain.Reservation{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		UserID:      userID,
		BookingDate: bookingDate.UTC(),
	}
	r.db.reservations[key] = res
	return &res, nil
}

// Find returns the reservation for the pair, if any.
func (r *ReservationRepo) Find(ctx context.Context, listingID, userID string) (*domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	res, ok := r.db.reservations[reservationKey{listingID: listingID, userID: userID}]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Reservation
	for k, res := range r.db.reservations {
		if k.userID == userID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BookingDate.After(out[j].BookingDate)
	})
	return out, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
