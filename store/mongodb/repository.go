package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	apperrors "github.com/NomadCrew/cats-backend/errors"
	"github.com/NomadCrew/cats-backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Option configures a Repository.
type Option func(*repositoryOptions)

type repositoryOptions struct {
	operationTimeout time.Duration
	collection       string
	now              func() time.Time
}

// WithOperationTimeout bounds every store call made by the repository. A
// shorter deadline already on the caller's context still wins.
func WithOperationTimeout(d time.Duration) Option {
	return func(o *repositoryOptions) {
		o.operationTimeout = d
	}
}

// WithCollectionName overrides the collection declared by the model.
func WithCollectionName(name string) Option {
	return func(o *repositoryOptions) {
		o.collection = name
	}
}

// WithClock replaces the clock used to stamp created documents.
func WithClock(now func() time.Time) Option {
	return func(o *repositoryOptions) {
		o.now = now
	}
}

// Repository implements store.Repository[T] for any model whose pointer
// type satisfies store.Document. It holds no per-request state and is safe
// for concurrent use.
type Repository[T any, PT interface {
	*T
	store.Document
}] struct {
	coll             *mongo.Collection
	name             string
	indexes          []store.Index
	operationTimeout time.Duration
	now              func() time.Time
	metrics          *StoreMetrics
}

var _ store.Repository[noDocument] = (*Repository[noDocument, *noDocument])(nil)

// NewRepository binds a repository for T to db. PT is inferred:
//
//	cats := mongodb.NewRepository[models.Cat](db)
func NewRepository[T any, PT interface {
	*T
	store.Document
}](db *mongo.Database, opts ...Option) *Repository[T, PT] {
	o := repositoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var zero T
	doc := PT(&zero)
	name := doc.CollectionName()
	if o.collection != "" {
		name = o.collection
	}

	return &Repository[T, PT]{
		coll:             db.Collection(name),
		name:             name,
		indexes:          doc.Indexes(),
		operationTimeout: o.operationTimeout,
		now:              o.now,
		metrics:          getStoreMetrics(),
	}
}

// CollectionName returns the backing collection.
func (r *Repository[T, PT]) CollectionName() string {
	return r.name
}

func (r *Repository[T, PT]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.operationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.operationTimeout)
}

func (r *Repository[T, PT]) observe(op string, start time.Time, errp *error) {
	r.metrics.observe(r.name, op, start, *errp)
}

func (r *Repository[T, PT]) op(name string) string {
	return r.name + "." + name
}

func orEmpty(filter store.Filter) store.Filter {
	if filter == nil {
		return store.Filter{}
	}
	return filter
}

// Create validates model, stamps it and inserts it. An invalid model never
// reaches the store. The returned pointer is model with its id assigned.
func (r *Repository[T, PT]) Create(ctx context.Context, model *T) (created *T, err error) {
	defer r.observe("create", time.Now(), &err)

	if model == nil {
		return nil, apperrors.ValidationFailed("Invalid input", "document is required")
	}
	doc := PT(model)
	if err := doc.Validate(); err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.ValidationFailed("Validation failed", err.Error())
	}

	doc.BeforeCreate(r.now().UTC().Truncate(time.Millisecond))

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, model)
	if err != nil {
		return nil, translate(r.op("create"), err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperrors.SerializationFailure(r.op("create"),
			fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	doc.SetID(id)
	return model, nil
}

// FindByID looks a document up by id alone. Callers that need tenant
// isolation use FindOne with the owner in the filter.
func (r *Repository[T, PT]) FindByID(ctx context.Context, id primitive.ObjectID) (found *T, err error) {
	defer r.observe("find_by_id", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.findOne(ctx, "find_by_id", store.Filter{"_id": id})
}

// FindOne returns the first document matching filter, or nil.
func (r *Repository[T, PT]) FindOne(ctx context.Context, filter store.Filter) (found *T, err error) {
	defer r.observe("find_one", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.findOne(ctx, "find_one", filter)
}

func (r *Repository[T, PT]) findOne(ctx context.Context, op string, filter store.Filter) (*T, error) {
	raw, err := r.coll.FindOne(ctx, orEmpty(filter)).Raw()
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(r.op(op), err)
	}
	return r.decode(op, raw)
}

func (r *Repository[T, PT]) decode(op string, raw bson.Raw) (*T, error) {
	var model T
	if err := bson.Unmarshal(raw, &model); err != nil {
		return nil, apperrors.SerializationFailure(r.op(op), err)
	}
	return &model, nil
}

func findOptions(opts store.FindOptions) *options.FindOptions {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	return findOpts
}

// Find returns every document matching filter after sort, skip and limit.
func (r *Repository[T, PT]) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) (items []T, err error) {
	defer r.observe("find", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	items = make([]T, 0)
	err = r.each(ctx, "find", filter, opts, func(model *T) error {
		items = append(items, *model)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindAndCount counts every document matching filter and then reads the
// requested page with the same filter. The two reads are separate round
// trips; a concurrent write between them can skew count against the page.
func (r *Repository[T, PT]) FindAndCount(ctx context.Context, filter store.Filter, opts store.FindOptions) (page store.Page[T], err error) {
	defer r.observe("find_and_count", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	filter = orEmpty(filter)
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return store.Page[T]{}, translate(r.op("find_and_count"), err)
	}

	items := make([]T, 0)
	err = r.each(ctx, "find_and_count", filter, opts, func(model *T) error {
		items = append(items, *model)
		return nil
	})
	if err != nil {
		return store.Page[T]{}, err
	}

	return store.Page[T]{
		Items:  items,
		Count:  count,
		Offset: opts.Skip,
		Limit:  opts.Limit,
	}, nil
}

// Each streams matching documents to fn one at a time. Iteration stops at
// the first error; an error returned by fn is passed back unchanged.
func (r *Repository[T, PT]) Each(ctx context.Context, filter store.Filter, opts store.FindOptions, fn func(*T) error) (err error) {
	defer r.observe("each", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.each(ctx, "each", filter, opts, fn)
}

func (r *Repository[T, PT]) each(ctx context.Context, op string, filter store.Filter, opts store.FindOptions, fn func(*T) error) error {
	cur, err := r.coll.Find(ctx, orEmpty(filter), findOptions(opts))
	if err != nil {
		return translate(r.op(op), err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		model, err := r.decode(op, cur.Current)
		if err != nil {
			return err
		}
		if err := fn(model); err != nil {
			return err
		}
	}
	if err := cur.Err(); err != nil {
		return translate(r.op(op), err)
	}
	return nil
}

// FindOneAndUpdate applies update to the first match in one atomic
// findAndModify and returns the document as it is after the update. No
// match yields nil.
func (r *Repository[T, PT]) FindOneAndUpdate(ctx context.Context, filter store.Filter, update store.Update) (updated *T, err error) {
	defer r.observe("find_one_and_update", time.Now(), &err)

	if len(update) == 0 {
		return nil, apperrors.ValidationFailed("Invalid update", "update must not be empty")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	raw, err := r.coll.FindOneAndUpdate(ctx, orEmpty(filter), update, opts).Raw()
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(r.op("find_one_and_update"), err)
	}
	return r.decode("find_one_and_update", raw)
}

// UpdateOne applies update to the first match. Zero matches is reported in
// the outcome, not as an error.
func (r *Repository[T, PT]) UpdateOne(ctx context.Context, filter store.Filter, update store.Update) (outcome store.UpdateOutcome, err error) {
	defer r.observe("update_one", time.Now(), &err)

	if len(update) == 0 {
		return store.UpdateOutcome{}, apperrors.ValidationFailed("Invalid update", "update must not be empty")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, orEmpty(filter), update)
	if err != nil {
		return store.UpdateOutcome{}, translate(r.op("update_one"), err)
	}
	return store.UpdateOutcome{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// UpdateMany applies update to every match.
func (r *Repository[T, PT]) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (outcome store.UpdateOutcome, err error) {
	defer r.observe("update_many", time.Now(), &err)

	if len(update) == 0 {
		return store.UpdateOutcome{}, apperrors.ValidationFailed("Invalid update", "update must not be empty")
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateMany(ctx, orEmpty(filter), update)
	if err != nil {
		return store.UpdateOutcome{}, translate(r.op("update_many"), err)
	}
	return store.UpdateOutcome{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// DeleteOne removes the first match and reports how many were removed.
func (r *Repository[T, PT]) DeleteOne(ctx context.Context, filter store.Filter) (outcome store.DeleteOutcome, err error) {
	defer r.observe("delete_one", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, orEmpty(filter))
	if err != nil {
		return store.DeleteOutcome{}, translate(r.op("delete_one"), err)
	}
	return store.DeleteOutcome{Deleted: res.DeletedCount}, nil
}

// DeleteMany removes every match.
func (r *Repository[T, PT]) DeleteMany(ctx context.Context, filter store.Filter) (outcome store.DeleteOutcome, err error) {
	defer r.observe("delete_many", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return store.DeleteOutcome{}, translate(r.op("delete_many"), err)
	}
	return store.DeleteOutcome{Deleted: res.DeletedCount}, nil
}

// Count returns the number of documents matching filter.
func (r *Repository[T, PT]) Count(ctx context.Context, filter store.Filter) (count int64, err error) {
	defer r.observe("count", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err = r.coll.CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, translate(r.op("count"), err)
	}
	return count, nil
}

// Exists reports whether at least one document matches filter.
func (r *Repository[T, PT]) Exists(ctx context.Context, filter store.Filter) (exists bool, err error) {
	defer r.observe("exists", time.Now(), &err)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, orEmpty(filter), options.Count().SetLimit(1))
	if err != nil {
		return false, translate(r.op("exists"), err)
	}
	return count > 0, nil
}

// AggregateRaw runs pipeline and returns the output documents undecoded.
// Use store.Aggregate to decode them into a result type.
func (r *Repository[T, PT]) AggregateRaw(ctx context.Context, pipeline store.Pipeline) (docs []bson.Raw, err error) {
	defer r.observe("aggregate", time.Now(), &err)

	if pipeline == nil {
		pipeline = store.Pipeline{}
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(r.op("aggregate"), err)
	}
	defer cur.Close(ctx)

	docs = make([]bson.Raw, 0)
	for cur.Next(ctx) {
		// Current is only valid until the next call to Next.
		docs = append(docs, append(bson.Raw(nil), cur.Current...))
	}
	if err := cur.Err(); err != nil {
		return nil, translate(r.op("aggregate"), err)
	}
	return docs, nil
}

// noDocument exists only for the interface assertion above.
type noDocument struct{}

func (*noDocument) CollectionName() string   { return "" }
func (*noDocument) Indexes() []store.Index   { return nil }
func (*noDocument) Validate() error          { return nil }
func (*noDocument) BeforeCreate(time.Time)   {}
func (*noDocument) SetID(primitive.ObjectID) {}
