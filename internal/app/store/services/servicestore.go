package servicestore

import (
	"context"

	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store reads the services collection. Services are owned by the
// services area of the platform; the directory only resolves references
// to them, so this store is read-only.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// GetByIDs loads the services for the given IDs in one batched query.
// IDs that resolve to nothing are simply absent from the result; that
// is expected, since provider documents hold weak references.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var services []models.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}
