package reviewstore

import (
	"context"

	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads the reviews collection. Reviews are owned by the reviews
// area of the platform; read-only here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

// GetByIDs loads the reviews for the given IDs in one batched query.
// Unresolvable IDs are absent from the result, never an error.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reviews []models.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
