// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is a named offering that belongs to a provider. The services
// collection is owned by the services area of the platform; this core
// only reads it when expanding provider relations.
type Service struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProviderID primitive.ObjectID `bson:"provider_id" json:"provider_id"`

	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64 `bson:"price,omitempty" json:"price,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
