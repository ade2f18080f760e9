package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vostok-trade/backend/internal/models"
)

const usersCollection = "users"

// UserStore handles user accounts in MongoDB.
type UserStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(usersCollection), now: timestamp}
}

// Create inserts u, filling in defaults, ID and timestamps.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	if u.UserType == "" {
		u.UserType = models.UserTypePersonal
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt

	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByEmail returns the user including its password hash.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"email": models.NormalizeEmail(email)}).Decode(&u)
	if err != nil {
		return nil, notFound(err, "get user by email")
	}
	return &u, nil
}

// GetByID returns the user without its password hash.
func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	if err := s.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, notFound(err, "get user by id")
	}
	return &u, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// timestamp matches the millisecond precision BSON dates are stored with.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
