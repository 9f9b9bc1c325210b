// internal/domain/models/provider.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider is a service professional's directory entry.
//
// Exactly one provider exists per owning user (unique index on user_id,
// see internal/app/system/indexes). ServiceIDs and ReviewIDs are weak
// references into the services and reviews collections; a listed ID may
// no longer resolve and readers must tolerate that.
type Provider struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"` // lowercase, diacritics-stripped

	Service   string `bson:"service,omitempty" json:"service,omitempty"` // category, e.g. "Plumbing"
	ServiceCI string `bson:"service_ci,omitempty" json:"service_ci,omitempty"`

	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	LocationCI string `bson:"location_ci,omitempty" json:"location_ci,omitempty"`

	PhotoURL string `bson:"photo_url,omitempty" json:"photo,omitempty"`

	ServiceIDs []primitive.ObjectID `bson:"service_ids,omitempty" json:"service_ids,omitempty"`
	ReviewIDs  []primitive.ObjectID `bson:"review_ids,omitempty" json:"review_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
