package store

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/macroroute/pkg/cache"
	"github.com/matzehuels/macroroute/pkg/errors"
)

// DefaultCollection is the collection runs are written to.
const DefaultCollection = "runs"

// MongoStore keeps records in a MongoDB collection keyed by run ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and uses database db. The connection is checked
// with a ping, retried on failure.
func OpenMongo(ctx context.Context, uri, db string) (*MongoStore, error) {
	if db == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo database name is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect %s", uri)
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx, nil); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping %s", uri)
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(DefaultCollection)}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, r Record) error {
	if err := validate(r); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": r.RunID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save run %s", r.RunID)
	}
	return nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, runID string) (Record, error) {
	return s.findOne(ctx, bson.M{"_id": runID}, nil, "run "+runID)
}

// Latest implements Store.
func (s *MongoStore) Latest(ctx context.Context, jobHash string) (Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.findOne(ctx, bson.M{"job_hash": jobHash}, opts, "job "+jobHash)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions, what string) (Record, error) {
	var r Record
	var err error
	if opts != nil {
		err = s.coll.FindOne(ctx, filter, opts).Decode(&r)
	} else {
		err = s.coll.FindOne(ctx, filter).Decode(&r)
	}
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, errors.New(errors.ErrCodeNotFound, "%s not found", what)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "load %s", what)
	}
	return r, nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
