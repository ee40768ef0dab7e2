package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const envconfigPrefix = "MONGODB"

// config represents common configuration options for a MongoDB connection
type config struct {
	// ConnectionString, when specified, takes precedence over all the
	// individual connection attributes below.
	ConnectionString string `envconfig:"CONNECTION_STRING"`
	Host             string `envconfig:"HOST"`
	Port             int    `envconfig:"PORT" default:"27017"`
	Database         string `envconfig:"DATABASE" required:"true"`
	ReplicaSet       string `envconfig:"REPLICA_SET"`
	Username         string `envconfig:"USERNAME"`
	Password         string `envconfig:"PASSWORD"`
}

func (c config) connectionString() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}
	if c.Host == "" {
		return "", errors.New(
			"a value is required for either the MONGODB_CONNECTION_STRING or " +
				"MONGODB_HOST environment variable",
		)
	}
	connectionString :=
		fmt.Sprintf("mongodb://%s:%d/%s", c.Host, c.Port, c.Database)
	if c.Username != "" {
		connectionString = fmt.Sprintf(
			"mongodb://%s:%s@%s:%d/%s",
			c.Username,
			c.Password,
			c.Host,
			c.Port,
			c.Database,
		)
	}
	if c.ReplicaSet != "" {
		connectionString =
			fmt.Sprintf("%s?replicaSet=%s", connectionString, c.ReplicaSet)
	}
	return connectionString, nil
}

// Database returns a connection to a MongoDB database specified by environment
// variables
func Database(ctx context.Context) (*mongo.Database, error) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting mongo configuration from environment",
		)
	}
	connectionString, err := c.connectionString()
	if err != nil {
		return nil, err
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	// This client's settings favor consistency over speed
	client, err := mongo.Connect(
		connectCtx,
		options.Client().ApplyURI(connectionString).SetWriteConcern(
			writeconcern.New(writeconcern.WMajority()),
		).SetReadConcern(readconcern.Majority()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}
	return client.Database(c.Database), nil
}
