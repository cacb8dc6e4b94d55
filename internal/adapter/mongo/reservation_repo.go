package mongo

import (
	"context"
	"errors"
	"time"

	"stays/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reservationDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ListingID   string             `bson:"airbnbId"`
	UserID      string             `bson:"userId"`
	BookingDate time.Time          `bson:"bookingDate"`
}

func (d reservationDoc) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:          d.ID.Hex(),
		ListingID:   d.ListingID,
		UserID:      d.UserID,
		BookingDate: d.BookingDate,
	}
}

// ReservationRepo implements domain.ReservationRepository on the
// reservations collection.
type ReservationRepo struct {
	coll *mongo.Collection
}

// NewReservationRepo returns a ReservationRepo for db.
func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{coll: db.Collection(ReservationsCollection)}
}

var _ domain.ReservationRepository = (*ReservationRepo)(nil)

// Create inserts a reservation; the listing_user_unique index turns a
// second booking of the pair into domain.ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, listingID, userID string, bookingDate time.Time) (*domain.Reservation, error) {
	doc := reservationDoc{
		ID:          primitive.NewObjectID(),
		ListingID:   listingID,
		UserID:      userID,
		BookingDate: bookingDate.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}
	res := doc.toDomain()
	return &res, nil
}

// Find returns the reservation for the pair, or nil.
func (r *ReservationRepo) Find(ctx context.Context, listingID, userID string) (*domain.Reservation, error) {
	var doc reservationDoc
	err := r.coll.FindOne(ctx, bson.M{"airbnbId": listingID, "userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := doc.toDomain()
	return &res, nil
}

// ListByUser returns the user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var docs []reservationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
