package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProvider inserts a provider owned by userID.
func (f *Fixtures) CreateProvider(ctx context.Context, userID primitive.ObjectID, name, service, location string) models.Provider {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	p := models.Provider{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Name:       name,
		NameCI:     text.Fold(name),
		Service:    service,
		ServiceCI:  text.Fold(service),
		Location:   location,
		LocationCI: text.Fold(location),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("providers").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test provider: %v", err)
	}
	return p
}

// CreateService inserts a service offering for the given provider.
func (f *Fixtures) CreateService(ctx context.Context, providerID primitive.ObjectID, name string, price float64) models.Service {
	f.t.Helper()

	s := models.Service{
		ID:         primitive.NewObjectID(),
		ProviderID: providerID,
		Name:       name,
		Price:      price,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("services").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test service: %v", err)
	}
	return s
}

// CreateReview inserts a review of the given provider.
func (f *Fixtures) CreateReview(ctx context.Context, providerID, userID primitive.ObjectID, rating int, comment string) models.Review {
	f.t.Helper()

	r := models.Review{
		ID:         primitive.NewObjectID(),
		ProviderID: providerID,
		UserID:     userID,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("reviews").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test review: %v", err)
	}
	return r
}

// AttachService appends a service reference to a provider document.
func (f *Fixtures) AttachService(ctx context.Context, providerID, serviceID primitive.ObjectID) {
	f.t.Helper()
	f.push(ctx, providerID, "service_ids", serviceID)
}

// AttachReview appends a review reference to a provider document.
func (f *Fixtures) AttachReview(ctx context.Context, providerID, reviewID primitive.ObjectID) {
	f.t.Helper()
	f.push(ctx, providerID, "review_ids", reviewID)
}

func (f *Fixtures) push(ctx context.Context, providerID primitive.ObjectID, field string, id primitive.ObjectID) {
	_, err := f.db.Collection("providers").UpdateByID(ctx, providerID,
		bson.M{"$push": bson.M{field: id}})
	if err != nil {
		f.t.Fatalf("failed to attach %s: %v", field, err)
	}
}
