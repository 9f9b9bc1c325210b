package providerstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/localfind/localfind/internal/app/system/normalize"
	"github.com/localfind/localfind/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no provider matches the lookup.
var ErrNotFound = errors.New("provider not found")

// Store is the durable home of provider records. It is the only writer
// of the providers collection; services and reviews are owned elsewhere
// and only referenced from here.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("providers")}
}

// GetByID loads one provider by ObjectID. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Provider, error) {
	var p models.Provider
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByUser loads the provider owned by the given user. This is keyed
// on user_id, not _id: "get my profile" and "get provider X" are
// different lookups. Returns ErrNotFound if the user has no profile.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Provider, error) {
	var p models.Provider
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Search returns every provider matching the given filter, in creation
// order. The directory is small enough that the full match set is
// returned without pagination.
func (s *Store) Search(ctx context.Context, filter bson.M) ([]models.Provider, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	providers := []models.Provider{}
	if err := cur.All(ctx, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// ProfileUpdate is the partial payload applied by Upsert. Nil fields
// are absent and leave the stored value unchanged; they never null a
// field out.
type ProfileUpdate struct {
	Service  *string
	Location *string
}

// Upsert creates the provider owned by userID if none exists, otherwise
// applies the non-nil fields of upd. The write is a single atomic
// update with upsert, so two concurrent first-time upserts for the
// same user cannot both insert: the unique user_id index rejects the
// loser, and the retry below lands as a plain update on the record the
// winner created.
//
// displayName seeds the provider name on creation only.
//
// The returned bool reports whether this call inserted the record. It
// comes from the upsert result itself, so exactly one of any set of
// concurrent first-time callers observes true.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, displayName string, upd ProfileUpdate) (*models.Provider, bool, error) {
	p, created, err := s.tryUpsert(ctx, userID, displayName, upd)
	if wafflemongo.IsDup(err) {
		// Lost an insert race; the record exists now, retry as update.
		p, created, err = s.tryUpsert(ctx, userID, displayName, upd)
	}
	return p, created, err
}

func (s *Store) tryUpsert(ctx context.Context, userID primitive.ObjectID, displayName string, upd ProfileUpdate) (*models.Provider, bool, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	name := normalize.Name(displayName)

	set := bson.M{"updated_at": now}
	if upd.Service != nil {
		set["service"] = *upd.Service
		set["service_ci"] = text.Fold(*upd.Service)
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
		set["location_ci"] = text.Fold(*upd.Location)
	}

	setOnInsert := bson.M{
		"user_id":    userID,
		"name":       name,
		"name_ci":    text.Fold(name),
		"created_at": now,
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, false, err
	}
	created := res.UpsertedCount > 0

	var p models.Provider
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p); err != nil {
		return nil, false, err
	}
	return &p, created, nil
}

// SetPhotoURL records the public URL of an uploaded display photo.
// Returns ErrNotFound if the provider no longer exists.
func (s *Store) SetPhotoURL(ctx context.Context, id primitive.ObjectID, photoURL string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"photo_url":  photoURL,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
