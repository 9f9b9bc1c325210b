// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is customer feedback attached to a provider. Owned by the
// reviews area of the platform; read-only here.
type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProviderID primitive.ObjectID `bson:"provider_id" json:"provider_id"`
	UserID     primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`

	Rating  int    `bson:"rating" json:"rating"` // 1..5
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
