package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/krancour/taskdash/internal/session"
	"github.com/pkg/errors"
)

// StorageOptions represents configuration options for a Redis-backed
// session.Storage.
type StorageOptions struct {
	// KeyPrefix is prepended to the name of every entry.
	KeyPrefix string
	// IdleTTL, if non-zero, is how long an entry survives without being read or
	// written.
	IdleTTL time.Duration
}

type storage struct {
	redisClient *redis.Client
	opts        StorageOptions
}

// NewStorage returns a session.Storage that keeps its entries in Redis.
func NewStorage(
	redisClient *redis.Client,
	opts *StorageOptions,
) session.Storage {
	if opts == nil {
		opts = &StorageOptions{}
	}
	return &storage{
		redisClient: redisClient,
		opts:        *opts,
	}
}

func (s *storage) GetItem(
	ctx context.Context,
	name string,
) ([]byte, bool, error) {
	key := s.key(name)
	client := s.redisClient.WithContext(ctx)
	value, err := client.Get(key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "error reading key %q", key)
	}
	if s.opts.IdleTTL > 0 {
		if err := client.Expire(key, s.opts.IdleTTL).Err(); err != nil {
			return nil, false, errors.Wrapf(
				err,
				"error extending expiry of key %q",
				key,
			)
		}
	}
	return value, true, nil
}

func (s *storage) SetItem(
	ctx context.Context,
	name string,
	value []byte,
) error {
	key := s.key(name)
	if err := s.redisClient.WithContext(ctx).Set(
		key,
		value,
		s.opts.IdleTTL,
	).Err(); err != nil {
		return errors.Wrapf(err, "error writing key %q", key)
	}
	return nil
}

func (s *storage) RemoveItem(ctx context.Context, name string) error {
	key := s.key(name)
	if err := s.redisClient.WithContext(ctx).Del(key).Err(); err != nil {
		return errors.Wrapf(err, "error deleting key %q", key)
	}
	return nil
}

func (s *storage) key(name string) string {
	return s.opts.KeyPrefix + name
}
