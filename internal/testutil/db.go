// Package testutil holds helpers shared by integration-style tests.
//
// Store tests run against a real Mongo instance when one is reachable
// and skip otherwise, so the suite passes on machines without Mongo.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoURI returns the test Mongo URI, overridable via
// LOCALFIND_TEST_MONGO_URI.
func mongoURI() string {
	if uri := os.Getenv("LOCALFIND_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// SetupTestDB connects to the test Mongo instance and returns a fresh,
// uniquely named database. The database is dropped and the client
// disconnected when the test ends. Skips the test when Mongo is not
// reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI()))
	if err != nil {
		t.Skipf("mongo not available at %s: %v", mongoURI(), err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo not reachable at %s: %v", mongoURI(), err)
	}

	name := fmt.Sprintf("localfind_test_%s", uuid.New().String()[:8])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context that expires with a comfortable margin
// for a single test's database calls.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
