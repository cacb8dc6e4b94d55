package mongo

import (
	"context"
	"errors"
	"time"

	"stays/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	FirstName   string             `bson:"firstName"`
	LastName    string             `bson:"lastName"`
	DateOfBirth time.Time          `bson:"dateOfBirth"`
	Username    string             `bson:"username"`
	Password    string             `bson:"password"`
	PhoneNumber string             `bson:"phoneNumber"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		DateOfBirth:  d.DateOfBirth,
		Username:     d.Username,
		PasswordHash: d.Password,
		PhoneNumber:  d.PhoneNumber,
		CreatedAt:    d.CreatedAt,
	}
}

// UserRepo implements domain.UserRepository on the users collection.
type UserRepo struct {
	coll *mongo.Collection
}

// NewUserRepo returns a UserRepo for db.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(UsersCollection)}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetByID retrieves a user by its hex ObjectID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// Create inserts a user. The unique username index yields domain.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, nu domain.NewUser) (*domain.User, error) {
	doc := userDoc{
		ID:          primitive.NewObjectID(),
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		DateOfBirth: nu.DateOfBirth,
		Username:    nu.Username,
		Password:    nu.PasswordHash,
		PhoneNumber: nu.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicate
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

// UpdateProfile sets the mutable profile fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"phoneNumber": p.PhoneNumber,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	return int(n), err
}
