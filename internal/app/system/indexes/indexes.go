// Package indexes reconciles the MongoDB indexes this service depends
// on. EnsureAll runs at startup and is idempotent; CreateOne on an
// index that already exists with the same keys and options is a no-op.
//
// The unique index on providers.user_id is load-bearing: it is what
// makes the one-provider-per-user invariant hold under concurrent
// first-time profile writes (the upsert retries on the duplicate-key
// error it produces).
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureAll creates every index the service queries against. Problems
// are aggregated so a single bad collection does not hide the rest.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureProviders(ctx, db); err != nil {
		problems = append(problems, "providers: "+err.Error())
	}
	if err := ensureServices(ctx, db); err != nil {
		problems = append(problems, "services: "+err.Error())
	}
	if err := ensureReviews(ctx, db); err != nil {
		problems = append(problems, "reviews: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureProviders(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("providers").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_id").SetUnique(true),
		},
		// Search touches the folded shadow fields.
		{
			Keys:    bson.D{{Key: "location_ci", Value: 1}},
			Options: options.Index().SetName("location_ci"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("name_ci"),
		},
		{
			Keys:    bson.D{{Key: "service_ci", Value: 1}},
			Options: options.Index().SetName("service_ci"),
		},
	})
	return err
}

func ensureServices(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("services").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetName("provider_id"),
	})
	return err
}

func ensureReviews(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetName("provider_id"),
	})
	return err
}
