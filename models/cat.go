package models

import (
	"strings"
	"time"

	"github.com/NomadCrew/cats-backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CatCollection = "cats"

// Cat is owned by exactly one user; every handler query filters on User.
type Cat struct {
	Base `bson:",inline"`
	User primitive.ObjectID `json:"user" bson:"user" validate:"required"`
	Name string             `json:"name" bson:"name" validate:"required,notblank,max=100"`
}

// NewCat builds an unsaved cat for owner. The name is stored trimmed.
func NewCat(owner primitive.ObjectID, name string) *Cat {
	return &Cat{User: owner, Name: strings.TrimSpace(name)}
}

// CatName trims a client supplied name and checks it against the same rules
// as Cat.Name, so a blank name is rejected before any store call.
func CatName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	err := validateStruct(struct {
		Name string `json:"name" validate:"required,notblank,max=100"`
	}{Name: name})
	if err != nil {
		return "", err
	}
	return name, nil
}

func (*Cat) CollectionName() string {
	return CatCollection
}

func (*Cat) Indexes() []store.Index {
	return []store.Index{
		{
			Name: "user_1_created_at_-1",
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
}

func (c *Cat) Validate() error {
	return validateStruct(c)
}

// CatScope is the identity-scoped filter for one cat.
func CatScope(id, owner primitive.ObjectID) store.Filter {
	return store.Filter{"_id": id, "user": owner}
}

// CatsOf selects every cat owned by owner.
func CatsOf(owner primitive.ObjectID) store.Filter {
	return store.Filter{"user": owner}
}

// CatListSort orders listings newest first.
var CatListSort = bson.D{{Key: "created_at", Value: -1}}

// RenameCat sets a new name and bumps updated_at.
func RenameCat(name string, now time.Time) store.Update {
	return store.Update{"$set": bson.M{"name": name, "updated_at": now}}
}

// PublicCat is the response shape of a cat.
type PublicCat struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Cat) ToPublic() PublicCat {
	return PublicCat{
		ID:        c.ID.Hex(),
		User:      c.User.Hex(),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CatNameCount is one row of the per-name statistics aggregation.
type CatNameCount struct {
	Name  string `json:"name" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// CatNameStats groups owner's cats by name, most common first.
func CatNameStats(owner primitive.ObjectID) store.Pipeline {
	return store.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: owner}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$name"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
}
