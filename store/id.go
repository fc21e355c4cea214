package store

import (
	"strings"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseID parses the 24 character hex form of a document id. Malformed
// input is a client error and never reaches the store.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperrors.InvalidID(raw)
	}
	return id, nil
}
