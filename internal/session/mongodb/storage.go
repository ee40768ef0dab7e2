package mongodb

import (
	"context"
	"time"

	"github.com/krancour/taskdash/internal/session"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName     = "sessionstorage"
	createIndexTimeout = 5 * time.Second
)

// StorageOptions represents configuration options for a MongoDB-backed
// session.Storage.
type StorageOptions struct {
	// IdleTTL, if non-zero, is how long an entry survives without being read or
	// written. Expired entries are removed by MongoDB's TTL monitor, so removal
	// may lag expiry by up to a minute.
	IdleTTL time.Duration
}

type item struct {
	Name     string    `bson:"name"`
	Value    []byte    `bson:"value"`
	Modified time.Time `bson:"modified"`
}

type storage struct {
	collection *mongo.Collection
	opts       StorageOptions
}

// NewStorage returns a session.Storage that keeps its entries in the
// sessionstorage collection of the provided database.
func NewStorage(
	database *mongo.Database,
	opts *StorageOptions,
) (session.Storage, error) {
	if opts == nil {
		opts = &StorageOptions{}
	}
	ctx, cancel :=
		context.WithTimeout(context.Background(), createIndexTimeout)
	defer cancel()
	collection := database.Collection(collectionName)
	if _, err := collection.Indexes().CreateMany(
		ctx,
		indexModels(*opts),
	); err != nil {
		return nil, errors.Wrapf(
			err,
			"error adding indexes to %s collection",
			collectionName,
		)
	}
	return &storage{
		collection: collection,
		opts:       *opts,
	}, nil
}

func indexModels(opts StorageOptions) []mongo.IndexModel {
	unique := true
	models := []mongo.IndexModel{
		{
			Keys: bson.M{
				"name": 1,
			},
			Options: &options.IndexOptions{
				Unique: &unique,
			},
		},
	}
	if opts.IdleTTL > 0 {
		// Expire idle entries
		models = append(
			models,
			mongo.IndexModel{
				Keys: bson.M{
					"modified": 1,
				},
				Options: options.Index().SetExpireAfterSeconds(
					ttlSeconds(opts.IdleTTL),
				),
			},
		)
	}
	return models
}

// ttlSeconds rounds ttl up to whole seconds.
func ttlSeconds(ttl time.Duration) int32 {
	seconds := int32(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	return seconds
}

func (s *storage) GetItem(
	ctx context.Context,
	name string,
) ([]byte, bool, error) {
	var res *mongo.SingleResult
	if s.opts.IdleTTL > 0 {
		// Reading an entry counts as activity
		res = s.collection.FindOneAndUpdate(
			ctx,
			bson.M{"name": name},
			bson.M{
				"$set": bson.M{"modified": time.Now().UTC()},
			},
		)
	} else {
		res = s.collection.FindOne(ctx, bson.M{"name": name})
	}
	if res.Err() == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if res.Err() != nil {
		return nil, false, errors.Wrapf(
			res.Err(),
			"error finding session storage item %q",
			name,
		)
	}
	i := item{}
	if err := res.Decode(&i); err != nil {
		return nil, false, errors.Wrapf(
			err,
			"error decoding session storage item %q",
			name,
		)
	}
	return i.Value, true, nil
}

func (s *storage) SetItem(
	ctx context.Context,
	name string,
	value []byte,
) error {
	if _, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"name": name},
		item{
			Name:     name,
			Value:    value,
			Modified: time.Now().UTC(),
		},
		options.Replace().SetUpsert(true),
	); err != nil {
		return errors.Wrapf(err, "error upserting session storage item %q", name)
	}
	return nil
}

func (s *storage) RemoveItem(ctx context.Context, name string) error {
	if _, err := s.collection.DeleteOne(
		ctx,
		bson.M{"name": name},
	); err != nil {
		return errors.Wrapf(err, "error deleting session storage item %q", name)
	}
	return nil
}
