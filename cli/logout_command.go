package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of taskdash",
	Action: logout,
}

func logout(c *cli.Context) error {
	client, store, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting taskdash client")
	}

	if _, ok := store.AccessToken(); ok {
		if err := client.Auth().Logout(c.Context); err != nil {
			return err
		}
	}

	if err := store.ClearAccessToken(c.Context); err != nil {
		return errors.Wrap(err, "error clearing session")
	}
	if err := deleteConfig(); err != nil {
		return errors.Wrap(err, "error clearing configuration")
	}

	fmt.Println("You have been logged out.")

	return nil
}
