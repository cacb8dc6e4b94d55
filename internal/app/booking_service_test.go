package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stays/internal/adapter/memory"
	"stays/internal/app"
	"stays/internal/domain"
)

func TestBook_Success(t *testing.T) {
	repo := &mockReservationRepo{
		createFn: func(_ context.Context, listingID, userID string, at time.Time) (*domain.Reservation, error) {
			if listingID != "L1" || userID != "u1" {
				t.Fatalf("unexpected pair %s/%s", listingID, userID)
			}
			if time.Since(at) > time.Minute {
				t.Fatalf("expected booking date near now, got %v", at)
			}
			return &domain.Reservation{ID: "r1", ListingID: listingID, UserID: userID, BookingDate: at}, nil
		},
	}
	svc := app.NewBookingService(&mockListingRepo{}, repo)

	res, err := svc.Book(context.Background(), "L1", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ID != "r1" {
		t.Fatalf("expected reservation r1, got %s", res.ID)
	}
}

func TestBook_AlreadyBooked(t *testing.T) {
	repo := &mockReservationRepo{
		createFn: func(context.Context, string, string, time.Time) (*domain.Reservation, error) {
			return nil, domain.ErrDuplicate
		},
		findFn: func(context.Context, string, string) (*domain.Reservation, error) {
			t.Fatal("booking must rely on the store constraint, not a prior read")
			return nil, nil
		},
	}
	svc := app.NewBookingService(&mockListingRepo{}, repo)

	_, err := svc.Book(context.Background(), "L1", "u1")
	if !errors.Is(err, app.ErrAlreadyBooked) {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
}

func TestBook_ListingNotFound(t *testing.T) {
	listings := &mockListingRepo{
		getByIDFn: func(context.Context, string) (*domain.Listing, error) { return nil, nil },
	}
	svc := app.NewBookingService(listings, &mockReservationRepo{
		createFn: func(context.Context, string, string, time.Time) (*domain.Reservation, error) {
			t.Fatal("must not create a reservation for a missing listing")
			return nil, nil
		},
	})

	_, err := svc.Book(context.Background(), "missing", "u1")
	if !errors.Is(err, app.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestBook_MissingListingID(t *testing.T) {
	svc := app.NewBookingService(&mockListingRepo{}, &mockReservationRepo{})

	_, err := svc.Book(context.Background(), "", "u1")
	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestBook_StoreUnavailable(t *testing.T) {
	cause := errors.New("i/o timeout")
	repo := &mockReservationRepo{
		createFn: func(context.Context, string, string, time.Time) (*domain.Reservation, error) {
			return nil, cause
		},
	}
	svc := app.NewBookingService(&mockListingRepo{}, repo)

	_, err := svc.Book(context.Background(), "L1", "u1")
	if !errors.Is(err, app.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestListReservations(t *testing.T) {
	repo := &mockReservationRepo{
		listByUserFn: func(_ context.Context, userID string) ([]domain.Reservation, error) {
			return []domain.Reservation{{ID: "r1", ListingID: "L1", UserID: userID}}, nil
		},
	}
	svc := app.NewBookingService(&mockListingRepo{}, repo)

	items, err := svc.ListReservations(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].UserID != "u1" {
		t.Fatalf("unexpected reservations %+v", items)
	}
}

func TestBook_ConcurrentSamePair(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	listings := db.NewListingRepo()
	reservations := db.NewReservationRepo()
	if err := listings.Insert(ctx, domain.Listing{ID: "L1", Name: "Loft", Bedrooms: 2, MinimumNights: 2, MaximumNights: 30}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	svc := app.NewBookingService(listings, reservations)

	const n = 50
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		duplicate atomic.Int32
	)
	start := make(chan struct{})
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Book(ctx, "L1", "alice")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, app.ErrAlreadyBooked):
				duplicate.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := successes.Load(); got != 1 {
		t.Errorf("expected exactly 1 successful booking, got %d", got)
	}
	if got := duplicate.Load(); got != n-1 {
		t.Errorf("expected %d ErrAlreadyBooked, got %d", n-1, got)
	}
	items, err := svc.ListReservations(ctx, "alice")
	if err != nil {
		t.Fatalf("ListReservations: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 reservation, got %d", len(items))
	}
}
