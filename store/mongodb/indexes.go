package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/cats-backend/logger"
	"github.com/NomadCrew/cats-backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// The primary key index is owned by the server.
const primaryIndexName = "_id_"

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
	Sparse bool   `bson:"sparse,omitempty"`
}

// SyncIndexes makes the collection's secondary indexes match the declared
// set: stale or changed indexes are dropped and missing ones created. The
// primary key index is never touched. Running it twice is a no-op.
func (r *Repository[T, PT]) SyncIndexes(ctx context.Context) (err error) {
	defer r.observe("sync_indexes", time.Now(), &err)
	log := logger.GetLogger()

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	existing, err := r.listIndexes(ctx)
	if err != nil {
		return translate(r.op("sync_indexes"), err)
	}

	declared := make(map[string]store.Index, len(r.indexes))
	for _, idx := range r.indexes {
		declared[idx.Name] = idx
	}

	for name, current := range existing {
		if name == primaryIndexName {
			continue
		}
		want, ok := declared[name]
		if ok && sameIndex(want, current) {
			continue
		}
		if _, err := r.coll.Indexes().DropOne(ctx, name); err != nil {
			return translate(r.op("sync_indexes"), fmt.Errorf("drop index %s: %w", name, err))
		}
		delete(existing, name)
		log.Infow("Dropped index", "collection", r.name, "index", name)
	}

	for _, idx := range r.indexes {
		if _, ok := existing[idx.Name]; ok {
			continue
		}
		model := mongo.IndexModel{
			Keys: idx.Keys,
			Options: options.Index().
				SetName(idx.Name).
				SetUnique(idx.Unique).
				SetSparse(idx.Sparse),
		}
		if _, err := r.coll.Indexes().CreateOne(ctx, model); err != nil {
			return translate(r.op("sync_indexes"), fmt.Errorf("create index %s: %w", idx.Name, err))
		}
		log.Infow("Created index", "collection", r.name, "index", idx.Name)
	}

	return nil
}

func (r *Repository[T, PT]) listIndexes(ctx context.Context) (map[string]existingIndex, error) {
	existing := make(map[string]existingIndex)

	// A collection that does not exist yet lists as empty.
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, err
		}
		existing[idx.Name] = idx
	}
	return existing, cur.Err()
}

func sameIndex(want store.Index, got existingIndex) bool {
	return want.Unique == got.Unique &&
		want.Sparse == got.Sparse &&
		sameKeys(want.Keys, got.Key)
}

// sameKeys compares key documents by field order and direction. Numeric
// directions compare by value since the server may return int32 or double.
func sameKeys(a, b bson.D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key {
			return false
		}
		av, aNum := asFloat(a[i].Value)
		bv, bNum := asFloat(b[i].Value)
		if aNum != bNum {
			return false
		}
		if aNum {
			if av != bv {
				return false
			}
			continue
		}
		if fmt.Sprint(a[i].Value) != fmt.Sprint(b[i].Value) {
			return false
		}
	}
	return true
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
