package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/message-core/internal/models"
	"github.com/nguyentranbao-ct/message-core/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keep the baseRepo implementation in sync with IRepository interface
var _ IRepository[models.Message] = (*baseRepo[models.Message])(nil)

type IEntity interface {
	CollectionName() string
	GetObjectID() models.ObjectID
}

// IRepository is the document store capability the message core relies on:
// lookups by id and filter, atomic conditional updates, ordered batches of
// conditional updates and aggregation pipelines.
type IRepository[E IEntity] interface {
	Insert(ctx context.Context, entity *E) (models.ObjectID, error)
	FindByID(ctx context.Context, docID models.ObjectID) (*E, error)
	Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*E, error)
	FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (*E, error)
	BulkWrite(ctx context.Context, writes []mongo.WriteModel) (*mongo.BulkWriteResult, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error
}

type baseRepo[E IEntity] struct {
	coll    *mongo.Collection
	metrics *prometheus.HistogramVec
}

func newBaseRepo[E IEntity](dbc *mongo.Database) baseRepo[E] {
	var entity E
	metrics, err := util.GetHistogramVec("mongodb_operation_duration_seconds", "collection", "op", "status")
	if err != nil {
		panic(err)
	}
	return baseRepo[E]{
		coll:    dbc.Collection(entity.CollectionName()),
		metrics: metrics,
	}
}

// this is a helper function to get the collection, but only for scripting purposes
func (r *baseRepo[E]) GetCollection() *mongo.Collection {
	return r.coll
}

func (r *baseRepo[E]) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		status = "not_found"
	default:
		status = "error"
	}
	r.metrics.WithLabelValues(r.coll.Name(), op, status).Observe(time.Since(start).Seconds())
}

func (r *baseRepo[E]) Insert(ctx context.Context, entity *E) (id models.ObjectID, err error) {
	defer func(start time.Time) { r.observe("insert", start, err) }(time.Now())

	result, err := r.coll.InsertOne(ctx, entity)
	if err != nil {
		return "", fmt.Errorf("insert one: %w", storeError(err))
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("invalid inserted id: %T %+v", result.InsertedID, result.InsertedID)
	}

	return models.ObjectID(oid.Hex()), nil
}

func (r *baseRepo[E]) FindByID(ctx context.Context, docID models.ObjectID) (entity *E, err error) {
	defer func(start time.Time) { r.observe("find_by_id", start, err) }(time.Now())

	entity = new(E)
	err = r.coll.FindOne(ctx, bson.M{"_id": docID}).Decode(entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one: %w", storeError(err))
	}
	return entity, nil
}

func (r *baseRepo[E]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) (entities []*E, err error) {
	defer func(start time.Time) { r.observe("find", start, err) }(time.Now())

	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", storeError(err))
	}
	defer cursor.Close(ctx)

	entities = []*E{}
	if err := cursor.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("cursor all: %w", storeError(err))
	}
	return entities, nil
}

// FindOneAndUpdate applies update to the first document matching filter and
// returns the document as it is after the update.
func (r *baseRepo[E]) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M) (entity *E, err error) {
	defer func(start time.Time) { r.observe("find_one_and_update", start, err) }(time.Now())

	opts := options.
		FindOneAndUpdate().
		SetReturnDocument(options.After)

	entity = new(E)
	err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find one and update: %w", storeError(err))
	}
	return entity, nil
}

// BulkWrite executes writes in order. Each write observes the effect of the
// writes before it.
func (r *baseRepo[E]) BulkWrite(ctx context.Context, writes []mongo.WriteModel) (result *mongo.BulkWriteResult, err error) {
	defer func(start time.Time) { r.observe("bulk_write", start, err) }(time.Now())

	result, err = r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return nil, fmt.Errorf("bulk write: %w", storeError(err))
	}
	return result, nil
}

func (r *baseRepo[E]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) (err error) {
	defer func(start time.Time) { r.observe("aggregate", start, err) }(time.Now())

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate: %w", storeError(err))
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("cursor all: %w", storeError(err))
	}
	return nil
}

// storeError tags transport and infrastructure failures as ErrStoreUnavailable
// while keeping the driver error in the chain.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
	}
	return err
}
