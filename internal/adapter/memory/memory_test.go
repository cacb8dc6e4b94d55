package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stays/internal/domain"
)

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, domain.NewUser{FirstName: "Bob", LastName: "Smith", Username: "bob@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated ID")
	}

	u2, err := db.GetByUsername(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u2 == nil || u2.ID != u.ID {
		t.Error("failed to retrieve user")
	}

	if _, err := db.Create(ctx, domain.NewUser{Username: "bob@example.com"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := db.UpdateProfile(ctx, u.ID, domain.ProfileUpdate{FirstName: "Robert", LastName: "Smith", PhoneNumber: "555"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	u3, _ := db.GetByID(ctx, u.ID)
	if u3.FirstName != "Robert" || u3.PhoneNumber != "555" {
		t.Errorf("profile not updated: %+v", u3)
	}

	if err := db.UpdateProfile(ctx, "missing", domain.ProfileUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	missing, err := db.GetByID(ctx, "missing")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown id, got %v, %v", missing, err)
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestUserRepository_ConcurrentCreate(t *testing.T) {
	db := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.Create(ctx, domain.NewUser{Username: "same@example.com"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, domain.ErrDuplicate) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly 1 successful create, got %d", ok)
	}
}

func TestListingRepository(t *testing.T) {
	db := New()
	repo := db.NewListingRepo()
	ctx := context.Background()

	for _, l := range []domain.Listing{
		{ID: "L1", Name: "Loft", Bedrooms: 2, MinimumNights: 2, MaximumNights: 30},
		{ID: "L2", Name: "Studio", Bedrooms: 1, MinimumNights: 1, MaximumNights: 10},
		{ID: "L3", Name: "House", Bedrooms: 4, MinimumNights: 3, MaximumNights: 365},
	} {
		if err := repo.Insert(ctx, l); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if err := repo.Insert(ctx, domain.Listing{ID: "L1"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	got, err := repo.Search(ctx, domain.ListingFilter{Bedrooms: 2, MinNights: 1, MaxNights: 30})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "L1" {
		t.Errorf("expected only L1, got %+v", got)
	}

	none, _ := repo.Search(ctx, domain.ListingFilter{Bedrooms: 10})
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}

	if err := repo.AppendReview(ctx, "L1", domain.Review{ReviewerName: "A", Comments: "one"}); err != nil {
		t.Fatalf("AppendReview: %v", err)
	}
	_ = repo.AppendReview(ctx, "L1", domain.Review{ReviewerName: "B", Comments: "two"})

	l, _ := repo.GetByID(ctx, "L1")
	if len(l.Reviews) != 2 || l.Reviews[0].ReviewerName != "A" || l.Reviews[1].ReviewerName != "B" {
		t.Errorf("expected reviews in append order, got %+v", l.Reviews)
	}

	// Returned listings are copies.
	l.Reviews[0].ReviewerName = "mutated"
	l2, _ := repo.GetByID(ctx, "L1")
	if l2.Reviews[0].ReviewerName != "A" {
		t.Error("caller mutation leaked into store")
	}

	if err := repo.AppendReview(ctx, "missing", domain.Review{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReservationRepository(t *testing.T) {
	db := New()
	repo := db.NewReservationRepo()
	ctx := context.Background()

	now := time.Now()
	res, err := repo.Create(ctx, "L1", "alice", now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID == "" {
		t.Error("expected generated ID")
	}

	if _, err := repo.Create(ctx, "L1", "alice", now); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Another user may book the same listing.
	if _, err := repo.Create(ctx, "L1", "bob", now); err != nil {
		t.Errorf("Create for bob: %v", err)
	}
	_, _ = repo.Create(ctx, "L2", "alice", now.Add(time.Minute))

	found, _ := repo.Find(ctx, "L1", "alice")
	if found == nil || found.ID != res.ID {
		t.Error("expected to find alice's reservation")
	}
	if nf, _ := repo.Find(ctx, "L2", "bob"); nf != nil {
		t.Error("expected no reservation for bob on L2")
	}

	list, _ := repo.ListByUser(ctx, "alice")
	if len(list) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(list))
	}
	if list[0].ListingID != "L2" {
		t.Errorf("expected newest first, got %+v", list)
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, domain.Session{Token: "token123", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = repo.Create(ctx, domain.Session{Token: "old", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)})

	sess, err := repo.GetByToken(ctx, "token123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess == nil {
		t.Fatal("expected session, got nil")
	}
	if sess.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	_ = repo.DeleteExpired(ctx)
	if old, _ := repo.GetByToken(ctx, "old"); old != nil {
		t.Error("expected expired session to be purged")
	}

	_ = repo.Delete(ctx, "token123")
	sess, _ = repo.GetByToken(ctx, "token123")
	if sess != nil {
		t.Error("expected nil (deleted)")
	}
}
