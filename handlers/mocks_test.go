package handlers

import (
	"context"
	"time"

	"github.com/NomadCrew/cats-backend/store"
	"github.com/NomadCrew/cats-backend/types"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockRepository is a testify mock of store.Repository for any model.
type MockRepository[T any] struct {
	mock.Mock
	collection string
}

func (m *MockRepository[T]) CollectionName() string {
	return m.collection
}

func (m *MockRepository[T]) model(args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Create(ctx context.Context, model *T) (*T, error) {
	return m.model(m.Called(ctx, model))
}

func (m *MockRepository[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return m.model(m.Called(ctx, id))
}

func (m *MockRepository[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	return m.model(m.Called(ctx, filter))
}

func (m *MockRepository[T]) Find(ctx context.Context, filter store.Filter, opts store.FindOptions) ([]T, error) {
	args := m.Called(ctx, filter, opts)
	items, _ := args.Get(0).([]T)
	return items, args.Error(1)
}

func (m *MockRepository[T]) FindAndCount(ctx context.Context, filter store.Filter, opts store.FindOptions) (store.Page[T], error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).(store.Page[T]), args.Error(1)
}

func (m *MockRepository[T]) Each(ctx context.Context, filter store.Filter, opts store.FindOptions, fn func(*T) error) error {
	return m.Called(ctx, filter, opts, fn).Error(0)
}

func (m *MockRepository[T]) FindOneAndUpdate(ctx context.Context, filter store.Filter, update store.Update) (*T, error) {
	return m.model(m.Called(ctx, filter, update))
}

func (m *MockRepository[T]) UpdateOne(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateOutcome, error) {
	args := m.Called(ctx, filter, update)
	return args.Get(0).(store.UpdateOutcome), args.Error(1)
}

func (m *MockRepository[T]) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateOutcome, error) {
	args := m.Called(ctx, filter, update)
	return args.Get(0).(store.UpdateOutcome), args.Error(1)
}

func (m *MockRepository[T]) DeleteOne(ctx context.Context, filter store.Filter) (store.DeleteOutcome, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(store.DeleteOutcome), args.Error(1)
}

func (m *MockRepository[T]) DeleteMany(ctx context.Context, filter store.Filter) (store.DeleteOutcome, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(store.DeleteOutcome), args.Error(1)
}

func (m *MockRepository[T]) Count(ctx context.Context, filter store.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository[T]) Exists(ctx context.Context, filter store.Filter) (bool, error) {
	args := m.Called(ctx, filter)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository[T]) AggregateRaw(ctx context.Context, pipeline store.Pipeline) ([]bson.Raw, error) {
	args := m.Called(ctx, pipeline)
	docs, _ := args.Get(0).([]bson.Raw)
	return docs, args.Error(1)
}

func (m *MockRepository[T]) SyncIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID, email string) (string, time.Time, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}
