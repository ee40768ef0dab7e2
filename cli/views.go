package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/krancour/taskdash/internal/authx"
	"github.com/krancour/taskdash/internal/query"
	"github.com/krancour/taskdash/internal/tasks"
	"github.com/krancour/taskdash/sdk"
	"github.com/pkg/errors"
)

// deniedNavigator remembers whether a provider asked to navigate away. There
// is nowhere to navigate to in a terminal, so this is reported as an error.
type deniedNavigator struct {
	mu     sync.Mutex
	denied bool
}

func (d *deniedNavigator) Navigate(string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = true
}

func (d *deniedNavigator) wasDenied() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.denied
}

// loadAuth retrieves the current user and, if workspaceID is non-empty, the
// specified workspace.
func loadAuth(
	ctx context.Context,
	queries *query.Client,
	client sdk.APIClient,
	workspaceID string,
) (authx.Value, error) {
	navigator := &deniedNavigator{}
	provider := authx.NewProvider(
		queries,
		client.Users(),
		client.Workspaces(),
		workspaceID,
		navigator,
	)
	provider.Mount(ctx)
	defer provider.Unmount()
	if _, err := provider.Settled(ctx); err != nil {
		return authx.Value{}, err
	}
	if navigator.wasDenied() {
		return authx.Value{}, errors.Errorf(
			"you do not have access to workspace %q",
			workspaceID,
		)
	}
	value := provider.Value()
	if value.Err != nil {
		return value, value.Err
	}
	return value, nil
}

// loadRecentTasks retrieves the tasks of the specified workspace.
func loadRecentTasks(
	ctx context.Context,
	queries *query.Client,
	client sdk.APIClient,
	workspaceID string,
) (tasks.View, *sdk.TaskList, error) {
	recent := tasks.NewRecentTasks(queries, client.Tasks(), workspaceID)
	recent.Mount(ctx)
	defer recent.Unmount()
	state, err := recent.Settled(ctx)
	if err != nil {
		return tasks.View{}, nil, err
	}
	view := tasks.Render(state)
	if view.Err != nil {
		return view, nil, view.Err
	}
	taskList, _ := state.Data.(*sdk.TaskList)
	return view, taskList, nil
}

func formatRecentTasks(
	output string,
	view tasks.View,
	taskList *sdk.TaskList,
) (string, error) {
	if taskList == nil {
		taskList = &sdk.TaskList{
			Tasks: []sdk.Task{},
		}
	}
	switch strings.ToLower(output) {
	case "table":
		if view.Empty {
			return fmt.Sprintln(view.Message), nil
		}
		table := uitable.New()
		table.AddRow("CODE", "TITLE", "STATUS", "PRIORITY", "DUE", "ASSIGNEE")
		for _, row := range view.Rows {
			table.AddRow(
				row.Code,
				row.Title,
				row.StatusLabel,
				row.PriorityLabel,
				row.DueDate,
				row.AssigneeName,
			)
		}
		return fmt.Sprintln(table), nil

	case "yaml":
		yamlBytes, err := yaml.Marshal(taskList)
		if err != nil {
			return "", errors.Wrap(
				err,
				"error formatting output from list tasks operation",
			)
		}
		return fmt.Sprintln(string(yamlBytes)), nil

	case "json":
		prettyJSON, err := json.MarshalIndent(taskList, "", "  ")
		if err != nil {
			return "", errors.Wrap(
				err,
				"error formatting output from list tasks operation",
			)
		}
		return fmt.Sprintln(string(prettyJSON)), nil
	}
	return "", errors.Errorf("unknown output format %q", output)
}

func formatUser(output string, user *sdk.User) (string, error) {
	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "NAME", "EMAIL", "CURRENT WORKSPACE")
		table.AddRow(user.ID, user.Name, user.Email, user.CurrentWorkspace)
		return fmt.Sprintln(table), nil

	case "yaml":
		yamlBytes, err := yaml.Marshal(user)
		if err != nil {
			return "", errors.Wrap(
				err,
				"error formatting output from get user operation",
			)
		}
		return fmt.Sprintln(string(yamlBytes)), nil

	case "json":
		prettyJSON, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return "", errors.Wrap(
				err,
				"error formatting output from get user operation",
			)
		}
		return fmt.Sprintln(string(prettyJSON)), nil
	}
	return "", errors.Errorf("unknown output format %q", output)
}
