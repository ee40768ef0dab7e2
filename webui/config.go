package main

import (
	"context"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/krancour/taskdash/internal/session"
	"github.com/krancour/taskdash/internal/session/mongodb"
	"github.com/krancour/taskdash/internal/session/redis"
	"github.com/krancour/taskdash/sdk"
	mongodbLib "github.com/krancour/taskdash/webui/internal/lib/mongodb"
	redisLib "github.com/krancour/taskdash/webui/internal/lib/redis"
	"github.com/krancour/taskdash/webui/internal/sessions"
	"github.com/pkg/errors"
)

const envconfigPrefix = "WEBUI"

// Supported values for WEBUI_SESSION_STORAGE
const (
	sessionStorageMemory  = "memory"
	sessionStorageRedis   = "redis"
	sessionStorageMongoDB = "mongodb"
)

type config struct {
	APIAddress            string        `envconfig:"API_ADDRESS" required:"true"`
	APIIgnoreCertWarnings bool          `envconfig:"API_IGNORE_CERT_WARNINGS"`
	SessionStorage        string        `envconfig:"SESSION_STORAGE" default:"memory"`
	SessionKeyPrefix      string        `envconfig:"SESSION_KEY_PREFIX" default:"taskdash:"`
	SessionIdleTTL        time.Duration `envconfig:"SESSION_IDLE_TTL" default:"24h"`
	SecureCookies         bool          `envconfig:"SECURE_COOKIES"`
	RenderTimeout         time.Duration `envconfig:"RENDER_TIMEOUT" default:"3s"`
	RefreshInterval       time.Duration `envconfig:"REFRESH_INTERVAL" default:"2s"`
}

// getConfigFromEnvironment returns configuration derived from environment
// variables
func getConfigFromEnvironment() (config, error) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return c, errors.Wrap(
			err,
			"error getting web UI configuration from environment",
		)
	}
	switch c.SessionStorage {
	case sessionStorageMemory, sessionStorageRedis, sessionStorageMongoDB:
	default:
		return c, errors.Errorf(
			"unrecognized value %q for the WEBUI_SESSION_STORAGE environment "+
				"variable; supported values are %q, %q, and %q",
			c.SessionStorage,
			sessionStorageMemory,
			sessionStorageRedis,
			sessionStorageMongoDB,
		)
	}
	return c, nil
}

// sessionStorage returns the session.Storage selected by configuration.
func (c config) sessionStorage(ctx context.Context) (session.Storage, error) {
	switch c.SessionStorage {
	case sessionStorageRedis:
		redisClient, err := redisLib.Client()
		if err != nil {
			return nil, err
		}
		return redis.NewStorage(
			redisClient,
			&redis.StorageOptions{
				KeyPrefix: c.SessionKeyPrefix,
				IdleTTL:   c.SessionIdleTTL,
			},
		), nil
	case sessionStorageMongoDB:
		database, err := mongodbLib.Database(ctx)
		if err != nil {
			return nil, err
		}
		return mongodb.NewStorage(
			database,
			&mongodb.StorageOptions{
				IdleTTL: c.SessionIdleTTL,
			},
		)
	default:
		return session.NewMemoryStorage(), nil
	}
}

// apiClientFactory returns a function that builds API clients authenticated
// by the provided token source.
func (c config) apiClientFactory() sessions.APIClientFactory {
	opts := &sdk.APIClientOptions{
		AllowInsecureConnections: c.APIIgnoreCertWarnings,
	}
	return func(tokens sdk.TokenSource) sdk.APIClient {
		return sdk.NewAPIClient(c.APIAddress, tokens, opts)
	}
}
