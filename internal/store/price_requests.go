package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vostok-trade/backend/internal/models"
)

const priceRequestsCollection = "pricerequests"

// PriceRequestStore logs price-list emails in MongoDB.
type PriceRequestStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPriceRequestStore(db *mongo.Database) *PriceRequestStore {
	return &PriceRequestStore{col: db.Collection(priceRequestsCollection), now: timestamp}
}

func (s *PriceRequestStore) Create(ctx context.Context, pr *models.PriceRequest) error {
	if pr.Status == "" {
		pr.Status = models.PriceRequestPending
	}
	pr.CreatedAt = s.now()
	pr.UpdatedAt = pr.CreatedAt
	if pr.RequestDate.IsZero() {
		pr.RequestDate = pr.CreatedAt
	}
	res, err := s.col.InsertOne(ctx, pr)
	if err != nil {
		return fmt.Errorf("create price request: %w", err)
	}
	pr.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// UpdateStatus moves a request to status.
func (s *PriceRequestStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PriceRequestStatus) error {
	res, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    status,
		"updatedAt": s.now(),
	}})
	if err != nil {
		return fmt.Errorf("update price request %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update price request %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// ListRecentByUser returns at most limit requests of one user, newest first.
func (s *PriceRequestStore) ListRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.PriceRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "requestDate", Value: -1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list price requests: %w", err)
	}
	defer cur.Close(ctx)

	requests := []models.PriceRequest{}
	if err := cur.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("list price requests: %w", err)
	}
	return requests, nil
}
