package utils

import (
	"context"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/middleware"
	"github.com/NomadCrew/cats-backend/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetUserIDFromContext extracts the user ID the auth middleware stored on
// the request context.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(middleware.UserIDKey).(string); ok && userID != "" {
		return userID, nil
	}
	return "", apperrors.AuthenticationFailed("User not authenticated")
}

// UserObjectID is GetUserIDFromContext parsed as a document ID. A subject
// that is not an ObjectID is treated as an invalid token.
func UserObjectID(ctx context.Context) (primitive.ObjectID, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := store.ParseID(userID)
	if err != nil {
		return primitive.NilObjectID, apperrors.AuthenticationFailed("Invalid authentication token")
	}
	return id, nil
}
