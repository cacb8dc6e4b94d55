package app_test

import (
	"context"
	"errors"
	"time"

	"stays/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	createFn        func(ctx context.Context, u domain.NewUser) (*domain.User, error)
	updateFn        func(ctx context.Context, id string, p domain.ProfileUpdate) error
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.NewUser) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	return &domain.User{ID: "u1", Username: u.Username, PasswordHash: u.PasswordHash}, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, p)
	}
	return nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s domain.Session) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type mockListingRepo struct {
	getByIDFn      func(ctx context.Context, id string) (*domain.Listing, error)
	searchFn       func(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error)
	appendReviewFn func(ctx context.Context, listingID string, r domain.Review) error
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Listing{ID: id}, nil
}

func (m *mockListingRepo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, f)
	}
	return nil, nil
}

func (m *mockListingRepo) AppendReview(ctx context.Context, listingID string, r domain.Review) error {
	if m.appendReviewFn != nil {
		return m.appendReviewFn(ctx, listingID, r)
	}
	return nil
}

func (m *mockListingRepo) Insert(ctx context.Context, l domain.Listing) error {
	return errors.New("not implemented")
}

type mockReservationRepo struct {
	createFn     func(ctx context.Context, listingID, userID string, at time.Time) (*domain.Reservation, error)
	findFn       func(ctx context.Context, listingID, userID string) (*domain.Reservation, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, listingID, userID string, at time.Time) (*domain.Reservation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, listingID, userID, at)
	}
	return &domain.Reservation{ID: "r1", ListingID: listingID, UserID: userID, BookingDate: at}, nil
}

func (m *mockReservationRepo) Find(ctx context.Context, listingID, userID string) (*domain.Reservation, error) {
	if m.findFn != nil {
		return m.findFn(ctx, listingID, userID)
	}
	return nil, nil
}

func (m *mockReservationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}
