package models

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/NomadCrew/cats-backend/logger"
)

// IndexSyncer is implemented by every repository.
type IndexSyncer interface {
	CollectionName() string
	SyncIndexes(ctx context.Context) error
}

// SyncIndexes reconciles the indexes of every collection. It keeps going
// after a failure and returns all failures joined. Callers treat the error
// as degraded, not fatal.
func SyncIndexes(ctx context.Context, syncers ...IndexSyncer) error {
	log := logger.GetLogger()

	var errs []error
	for _, s := range syncers {
		if err := s.SyncIndexes(ctx); err != nil {
			log.Errorw("Failed to sync indexes", "collection", s.CollectionName(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.CollectionName(), err))
			continue
		}
		log.Debugw("Indexes in sync", "collection", s.CollectionName())
	}
	return stderrors.Join(errs...)
}
