package mongo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stays/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// count decodes a numeric listing field. The sample_airbnb dataset stores
// the night bounds as strings, so numeric strings are accepted as well.
type count int

func (c *count) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Int32:
		*c = count(rv.Int32())
	case bsontype.Int64:
		*c = count(rv.Int64())
	case bsontype.Double:
		*c = count(math.Round(rv.Double()))
	case bsontype.Decimal128:
		return c.parse(rv.Decimal128().String())
	case bsontype.String:
		return c.parse(rv.StringValue())
	case bsontype.Null, bsontype.Undefined:
		*c = 0
	default:
		return fmt.Errorf("cannot decode %s into a count", t)
	}
	return nil
}

func (c *count) parse(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("decode count %q: %w", s, err)
	}
	*c = count(math.Round(f))
	return nil
}

type listingDoc struct {
	ID            string          `bson:"_id"`
	Name          string          `bson:"name"`
	Summary       string          `bson:"summary"`
	PropertyType  string          `bson:"property_type"`
	Bedrooms      count           `bson:"bedrooms"`
	MinimumNights count           `bson:"minimum_nights"`
	MaximumNights count           `bson:"maximum_nights"`
	Reviews       []domain.Review `bson:"reviews"`
}

func (d listingDoc) toDomain() domain.Listing {
	reviews := d.Reviews
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return domain.Listing{
		ID:            d.ID,
		Name:          d.Name,
		Summary:       d.Summary,
		PropertyType:  d.PropertyType,
		Bedrooms:      int(d.Bedrooms),
		MinimumNights: int(d.MinimumNights),
		MaximumNights: int(d.MaximumNights),
		Reviews:       reviews,
	}
}

// ListingRepo implements domain.ListingRepository on listingsAndReviews.
// Reviews are embedded in the listing document.
type ListingRepo struct {
	coll *mongo.Collection
}

// NewListingRepo returns a ListingRepo for db.
func NewListingRepo(db *mongo.Database) *ListingRepo {
	return &ListingRepo{coll: db.Collection(ListingsCollection)}
}

var _ domain.ListingRepository = (*ListingRepo)(nil)

// GetByID returns the listing or nil when it does not exist.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l := doc.toDomain()
	return &l, nil
}

// numeric converts a field to a double inside $expr, yielding null for
// missing or non-numeric values.
func numeric(field string) bson.M {
	return bson.M{"$convert": bson.M{
		"input":   "$" + field,
		"to":      "double",
		"onError": nil,
		"onNull":  nil,
	}}
}

// SearchFilter builds the query document for f. Fields are compared after
// conversion so string and numeric bounds match alike; null sorts below
// every number, so only the upper bound needs an explicit null check.
func SearchFilter(f domain.ListingFilter) bson.M {
	maxNights := numeric("maximum_nights")
	return bson.M{"$expr": bson.M{"$and": bson.A{
		bson.M{"$gte": bson.A{numeric("bedrooms"), f.Bedrooms}},
		bson.M{"$gte": bson.A{numeric("minimum_nights"), f.MinNights}},
		bson.M{"$ne": bson.A{maxNights, nil}},
		bson.M{"$lte": bson.A{maxNights, f.MaxNights}},
	}}}
}

// Search returns the listings matching f.
func (r *ListingRepo) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	cur, err := r.coll.Find(ctx, SearchFilter(f))
	if err != nil {
		return nil, err
	}
	var docs []listingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// AppendReview pushes rev onto the listing's reviews array.
func (r *ListingRepo) AppendReview(ctx context.Context, listingID string, rev domain.Review) error {
	res, err := r.coll.UpdateByID(ctx, listingID, bson.M{"$push": bson.M{"reviews": rev}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Insert stores a listing document.
func (r *ListingRepo) Insert(ctx context.Context, l domain.Listing) error {
	if l.ID == "" {
		l.ID = primitive.NewObjectID().Hex()
	}
	if l.Reviews == nil {
		l.Reviews = []domain.Review{}
	}
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return err
	}
	return nil
}
