package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vostok-trade/backend/internal/models"
)

const productsCollection = "products"

// ProductStore handles the product catalog in MongoDB.
type ProductStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{col: db.Collection(productsCollection), now: timestamp}
}

// List returns the whole catalog in insertion order.
func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	cur, err := s.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.CreatedAt = s.now()
	p.UpdatedAt = p.CreatedAt
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ReplaceAll deletes every product and inserts products in their place. The
// two steps are not atomic: a failed insert leaves the catalog empty.
func (s *ProductStore) ReplaceAll(ctx context.Context, products []models.Product) (int, error) {
	if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}
	if len(products) == 0 {
		return 0, nil
	}

	now := s.now()
	docs := make([]interface{}, len(products))
	for i := range products {
		products[i].ID = primitive.NilObjectID
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
		docs[i] = products[i]
	}
	res, err := s.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert products: %w", err)
	}
	for i, id := range res.InsertedIDs {
		products[i].ID = id.(primitive.ObjectID)
	}
	return len(res.InsertedIDs), nil
}
