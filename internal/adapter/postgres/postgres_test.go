package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"stays/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

var (
	userColumns        = []string{"id", "first_name", "last_name", "date_of_birth", "username", "password_hash", "phone_number", "created_at"}
	listingColumns     = []string{"id", "name", "summary", "property_type", "bedrooms", "minimum_nights", "maximum_nights"}
	reviewColumns      = []string{"listing_id", "reviewer_id", "reviewer_name", "date", "comments"}
	reservationColumns = []string{"id", "listing_id", "user_id", "booking_date"}
)

func TestDB_Ping(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := New(sqlx.NewDb(sqlDB, "postgres"))

	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, db.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name         string
		mockBehavior func()
		wantUser     bool
		wantErr      bool
	}{
		{
			name: "Found",
			mockBehavior: func() {
				mock.ExpectQuery(queryUserByUsername).
					WithArgs("alice@example.com").
					WillReturnRows(sqlmock.NewRows(userColumns).
						AddRow("u1", "Alice", "Liddell", now, "alice@example.com", "hash", "555", now))
			},
			wantUser: true,
		},
		{
			name: "Not Found",
			mockBehavior: func() {
				mock.ExpectQuery(queryUserByUsername).
					WithArgs("alice@example.com").
					WillReturnRows(sqlmock.NewRows(userColumns))
			},
		},
		{
			name: "Store Error",
			mockBehavior: func() {
				mock.ExpectQuery(queryUserByUsername).
					WithArgs("alice@example.com").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			u, err := db.GetByUsername(ctx, "alice@example.com")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantUser {
				require.NotNil(t, u)
				assert.Equal(t, "u1", u.ID)
				assert.Equal(t, "Alice", u.FirstName)
			} else {
				assert.Nil(t, u)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectExec(insertUser).
		WithArgs(sqlmock.AnyArg(), "Alice", "Liddell", sqlmock.AnyArg(), "alice@example.com", "hash", "555", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := db.Create(context.Background(), domain.NewUser{
		FirstName: "Alice", LastName: "Liddell", Username: "alice@example.com", PasswordHash: "hash", PhoneNumber: "555",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()
	p := domain.ProfileUpdate{FirstName: "Al", LastName: "L", PhoneNumber: "1"}

	mock.ExpectExec(updateUserProfile).WithArgs("Al", "L", "1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, db.UpdateProfile(ctx, "u1", p))

	mock.ExpectExec(updateUserProfile).WithArgs("Al", "L", "1", "missing").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, db.UpdateProfile(ctx, "missing", p), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(queryListingByID).WithArgs("L1").
		WillReturnRows(sqlmock.NewRows(listingColumns).AddRow("L1", "Loft", "Sunny", "Apartment", 2, 2, 30))
	mock.ExpectQuery(queryReviewsByListing).WithArgs("L1").
		WillReturnRows(sqlmock.NewRows(reviewColumns).
			AddRow("L1", "u1", "A", now, "first").
			AddRow("L1", "u2", "B", now, "second"))

	l, err := repo.GetByID(context.Background(), "L1")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 2, l.Bedrooms)
	require.Len(t, l.Reviews, 2)
	assert.Equal(t, "A", l.Reviews[0].ReviewerName)
	assert.Equal(t, "B", l.Reviews[1].ReviewerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_GetByIDMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)

	mock.ExpectQuery(queryListingByID).WithArgs("nope").WillReturnRows(sqlmock.NewRows(listingColumns))

	l, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, l)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Search(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(searchListings).WithArgs(2, 1, 30).
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow("L1", "Loft", "", "Apartment", 2, 2, 30).
			AddRow("L3", "House", "", "House", 3, 1, 14))
	mock.ExpectQuery("SELECT listing_id, reviewer_id, reviewer_name, date, comments FROM listing_reviews WHERE listing_id IN ($1, $2) ORDER BY id").
		WithArgs("L1", "L3").
		WillReturnRows(sqlmock.NewRows(reviewColumns).AddRow("L3", "u1", "A", now, "nice"))

	got, err := repo.Search(context.Background(), domain.ListingFilter{Bedrooms: 2, MinNights: 1, MaxNights: 30})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Reviews)
	require.Len(t, got[1].Reviews, 1)
	assert.Equal(t, "nice", got[1].Reviews[0].Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_SearchEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)

	mock.ExpectQuery(searchListings).WithArgs(9, 1, 2).WillReturnRows(sqlmock.NewRows(listingColumns))

	got, err := repo.Search(context.Background(), domain.ListingFilter{Bedrooms: 9, MinNights: 1, MaxNights: 2})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_AppendReview(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)
	ctx := context.Background()
	rev := domain.Review{ReviewerID: "u1", ReviewerName: "Alice", Date: time.Now(), Comments: "lovely"}

	mock.ExpectQuery(listingExists).WithArgs("L1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(insertReview).
		WithArgs("L1", "u1", "Alice", sqlmock.AnyArg(), "lovely").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.AppendReview(ctx, "L1", rev))

	mock.ExpectQuery(listingExists).WithArgs("gone").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	assert.ErrorIs(t, repo.AppendReview(ctx, "gone", rev), domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewListingRepo(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(insertListing).
		WithArgs("L1", "Loft", "Sunny", "Apartment", 2, 2, 30).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertReview).
		WithArgs("L1", "", "Seed", sqlmock.AnyArg(), "ok").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Insert(ctx, domain.Listing{
		ID: "L1", Name: "Loft", Summary: "Sunny", PropertyType: "Apartment",
		Bedrooms: 2, MinimumNights: 2, MaximumNights: 30,
		Reviews: []domain.Review{{ReviewerName: "Seed", Comments: "ok", Date: time.Now()}},
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(insertListing).
		WithArgs("L1", "", "", "", 0, 0, 0).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Insert(ctx, domain.Listing{ID: "L1"}), domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReservationRepo(db)
	ctx := context.Background()

	mock.ExpectExec(insertReservation).
		WithArgs(sqlmock.AnyArg(), "L1", "alice", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertReservation).
		WithArgs(sqlmock.AnyArg(), "L1", "alice", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reservations_listing_id_user_id_key"})

	res, err := repo.Create(ctx, "L1", "alice", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)

	_, err = repo.Create(ctx, "L1", "alice", time.Now())
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_CreateStoreError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(insertReservation).
		WithArgs(sqlmock.AnyArg(), "L1", "alice", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "57P01"})

	_, err := repo.Create(context.Background(), "L1", "alice", time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrDuplicate))
}

func TestReservationRepository_FindAndList(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReservationRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(queryReservation).WithArgs("L1", "alice").
		WillReturnRows(sqlmock.NewRows(reservationColumns).AddRow("r1", "L1", "alice", now))
	mock.ExpectQuery(queryReservation).WithArgs("L1", "bob").
		WillReturnRows(sqlmock.NewRows(reservationColumns))
	mock.ExpectQuery(queryUserBookings).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(reservationColumns).
			AddRow("r2", "L2", "alice", now).
			AddRow("r1", "L1", "alice", now.Add(-time.Hour)))

	found, err := repo.Find(ctx, "L1", "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "r1", found.ID)

	missing, err := repo.Find(ctx, "L1", "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).UTC()

	mock.ExpectExec(insertSession).
		WithArgs("tok", "u1", "curl/8", "127.0.0.1", exp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(querySessionByToken).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "user_agent", "ip", "expires_at", "created_at"}).
			AddRow("tok", "u1", "curl/8", "127.0.0.1", exp, time.Now().UTC()))
	mock.ExpectExec(deleteSession).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteExpiredSession).WithArgs(sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Create(ctx, domain.Session{Token: "tok", UserID: "u1", UserAgent: "curl/8", IP: "127.0.0.1", ExpiresAt: exp}))

	s, err := repo.GetByToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "curl/8", s.UserAgent)

	require.NoError(t, repo.Delete(ctx, "tok"))
	require.NoError(t, repo.DeleteExpired(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
