package redis

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const envconfigPrefix = "REDIS"

// config represents common configuration options for a Redis connection
type config struct {
	Host      string `envconfig:"HOST" required:"true"`
	Port      int    `envconfig:"PORT" default:"6379"`
	Password  string `envconfig:"PASSWORD"`
	DB        int    `envconfig:"DB"`
	EnableTLS bool   `envconfig:"ENABLE_TLS"`
}

// Client returns a connection to a Redis database specified by environment
// variables. The connection is verified before it is returned.
func Client() (*redis.Client, error) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting redis configuration from environment",
		)
	}
	redisOpts := &redis.Options{
		Addr:        fmt.Sprintf("%s:%d", c.Host, c.Port),
		Password:    c.Password,
		DB:          c.DB,
		MaxRetries:  5,
		DialTimeout: 10 * time.Second,
	}
	if c.EnableTLS {
		redisOpts.TLSConfig = &tls.Config{
			ServerName: c.Host,
		}
	}
	client := redis.NewClient(redisOpts)
	if err := client.Ping().Err(); err != nil {
		client.Close() // nolint: errcheck
		return nil, errors.Wrapf(
			err,
			"error connecting to redis at %s",
			redisOpts.Addr,
		)
	}
	return client, nil
}
