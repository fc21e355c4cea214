package store

import (
	"context"
	"fmt"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// RawAggregator runs a pipeline and returns the undecoded output documents.
type RawAggregator interface {
	CollectionName() string
	AggregateRaw(ctx context.Context, pipeline Pipeline) ([]bson.Raw, error)
}

// Aggregate runs pipeline and decodes every output document into R. If any
// document fails to decode the whole call fails and no results are returned.
func Aggregate[R any](ctx context.Context, src RawAggregator, pipeline Pipeline) ([]R, error) {
	docs, err := src.AggregateRaw(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	results := make([]R, 0, len(docs))
	for i, doc := range docs {
		var result R
		if err := bson.Unmarshal(doc, &result); err != nil {
			return nil, apperrors.SerializationFailure(
				fmt.Sprintf("%s.aggregate[%d]", src.CollectionName(), i), err)
		}
		results = append(results, result)
	}
	return results, nil
}
