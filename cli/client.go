package main

import (
	"context"

	"github.com/krancour/taskdash/internal/session"
	sessionFile "github.com/krancour/taskdash/internal/session/file"
	"github.com/krancour/taskdash/sdk"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// getSessionStore returns the Store that holds the CLI's access token between
// invocations.
func getSessionStore(ctx context.Context) (*session.Store, error) {
	taskdashHome, err := sessionFile.DefaultDir()
	if err != nil {
		return nil, errors.Wrapf(err, "error finding taskdash home")
	}
	return session.NewStore(
		ctx,
		sessionFile.NewStorage(taskdashHome),
		session.DefaultName,
	)
}

func newAPIClient(
	c *cli.Context,
	address string,
	tokens sdk.TokenSource,
) sdk.APIClient {
	return sdk.NewAPIClient(
		address,
		tokens,
		&sdk.APIClientOptions{
			AllowInsecureConnections: c.Bool(flagInsecure),
		},
	)
}

func getClient(c *cli.Context) (sdk.APIClient, *session.Store, error) {
	config, err := getConfig()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error retrieving configuration")
	}
	store, err := getSessionStore(c.Context)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error loading session")
	}
	return newAPIClient(c, config.APIAddress, store), store, nil
}
