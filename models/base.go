// Package models holds the persisted entities and the capability methods the
// store needs from them.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Base carries the identity and timestamps shared by every model. Embed it
// inline so its fields sit at the top level of the stored document.
type Base struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// SetID records the id assigned by the store.
func (b *Base) SetID(id primitive.ObjectID) {
	b.ID = id
}

// BeforeCreate stamps both timestamps with the creation time.
func (b *Base) BeforeCreate(now time.Time) {
	b.CreatedAt = now
	b.UpdatedAt = now
}

// Now is the store-precision clock used for update timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
