package main

import (
	"fmt"

	"github.com/krancour/taskdash/internal/query"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var taskCommand = &cli.Command{
	Name:  "task",
	Usage: "Work with tasks",
	Subcommands: []*cli.Command{
		{
			Name:  "recent",
			Usage: "List a workspace's recent tasks",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagWorkspace,
					Aliases: []string{"w"},
					Usage: "List tasks from the specified workspace; defaults to " +
						"your current workspace",
				},
				cliFlagOutput,
			},
			Action: taskRecent,
		},
	},
}

func taskRecent(c *cli.Context) error {
	workspaceID := c.String(flagWorkspace)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, _, err := getClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting taskdash client")
	}

	queries := query.NewClient()

	if workspaceID == "" {
		auth, err := loadAuth(c.Context, queries, client, "")
		if err != nil {
			return err
		}
		if workspaceID = auth.User.CurrentWorkspace; workspaceID == "" {
			return errors.New(
				"you have no current workspace; please specify one using " +
					"--workspace",
			)
		}
	}

	if _, err := loadAuth(c.Context, queries, client, workspaceID); err != nil {
		return err
	}

	view, taskList, err := loadRecentTasks(c.Context, queries, client, workspaceID)
	if err != nil {
		return err
	}

	out, err := formatRecentTasks(output, view, taskList)
	if err != nil {
		return err
	}
	fmt.Print(out)

	return nil
}
