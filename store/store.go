// Package store defines the document store contract shared by every model:
// the operation set, its query and outcome types, and the helpers that sit
// on top of it. The MongoDB implementation lives in store/mongodb.
package store

import (
	"context"
	"time"

	"github.com/NomadCrew/cats-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter selects documents. Identity-scoped callers must include both the
// document id and the owner reference.
type Filter = bson.M

// Update is an update document built from operators such as $set or $inc.
type Update = bson.M

// Pipeline is an ordered list of aggregation stages.
type Pipeline = []bson.D

// FindOptions carries sort, skip and limit for filtered reads. A zero
// Limit means no limit.
type FindOptions struct {
	Sort  bson.D
	Skip  int64
	Limit int64
}

// PageOptions builds FindOptions from already resolved pagination params.
func PageOptions(p pagination.Params, sort bson.D) FindOptions {
	return FindOptions{
		Sort:  sort,
		Skip:  p.Offset,
		Limit: p.Limit,
	}
}

// Page is one page of a filtered read plus the number of documents the
// filter matches in total. Count is computed independently of the page.
type Page[T any] struct {
	Items  []T
	Count  int64
	Offset int64
	Limit  int64
}

// MapPage converts the items of a page and keeps its metadata.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:  items,
		Count:  p.Count,
		Offset: p.Offset,
		Limit:  p.Limit,
	}
}

// UpdateOutcome reports how many documents an update matched and changed.
// Zero matches is not an error; callers decide what it means.
type UpdateOutcome struct {
	Matched  int64
	Modified int64
}

// DeleteOutcome reports the exact number of removed documents.
type DeleteOutcome struct {
	Deleted int64
}

// Index declares a secondary index. Name identifies the index when the
// declared set is reconciled against the store.
type Index struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
}

// Document is the capability set a model needs to be persisted.
type Document interface {
	CollectionName() string
	Indexes() []Index
	// Validate runs before any write; a non-nil error aborts the create.
	Validate() error
	// BeforeCreate stamps creation metadata. now is already truncated to
	// the store's precision.
	BeforeCreate(now time.Time)
	SetID(id primitive.ObjectID)
}

// Repository is the generic access layer for one model type. Point reads
// return a nil model and a nil error when nothing matches. Every error is an
// *errors.AppError.
type Repository[T any] interface {
	CollectionName() string

	Create(ctx context.Context, model *T) (*T, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	FindOne(ctx context.Context, filter Filter) (*T, error)
	Find(ctx context.Context, filter Filter, opts FindOptions) ([]T, error)
	FindAndCount(ctx context.Context, filter Filter, opts FindOptions) (Page[T], error)
	Each(ctx context.Context, filter Filter, opts FindOptions, fn func(*T) error) error

	FindOneAndUpdate(ctx context.Context, filter Filter, update Update) (*T, error)
	UpdateOne(ctx context.Context, filter Filter, update Update) (UpdateOutcome, error)
	UpdateMany(ctx context.Context, filter Filter, update Update) (UpdateOutcome, error)

	DeleteOne(ctx context.Context, filter Filter) (DeleteOutcome, error)
	DeleteMany(ctx context.Context, filter Filter) (DeleteOutcome, error)

	Count(ctx context.Context, filter Filter) (int64, error)
	Exists(ctx context.Context, filter Filter) (bool, error)

	AggregateRaw(ctx context.Context, pipeline Pipeline) ([]bson.Raw, error)
	SyncIndexes(ctx context.Context) error
}
