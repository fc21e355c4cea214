package mongodb

import (
	stderrors "errors"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

// translate is the only place driver errors are classified. Errors that are
// already classified pass through untouched.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}

	if mongo.IsDuplicateKeyError(err) {
		logger.GetLogger().Warnw("Unique index violation", "operation", op, "error", err)
		conflict := apperrors.Conflict("Resource already exists", "a document with the same unique key already exists")
		conflict.Raw = err
		return conflict
	}

	var marshalErr mongo.MarshalError
	if stderrors.As(err, &marshalErr) {
		return apperrors.SerializationFailure(op, err)
	}

	return apperrors.StoreFailure(op, err)
}
