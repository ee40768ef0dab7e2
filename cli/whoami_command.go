package main

import (
	"fmt"

	"github.com/krancour/taskdash/internal/query"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the currently logged in user",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: whoami,
}

func whoami(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, _, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting taskdash client")
	}

	auth, err := loadAuth(c.Context, query.NewClient(), client, "")
	if err != nil {
		return err
	}

	out, err := formatUser(output, auth.User)
	if err != nil {
		return err
	}
	fmt.Print(out)

	return nil
}
