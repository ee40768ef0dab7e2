// Package tasks presents a workspace's tasks.
package tasks

import (
	"context"

	"github.com/krancour/taskdash/internal/query"
	"github.com/krancour/taskdash/sdk"
	"github.com/krancour/taskdash/sdk/meta"
)

// ZeroStateMessage is shown in place of rows when a workspace has no tasks.
const ZeroStateMessage = "No tasks created yet"

// TasksLister lists a workspace's tasks. sdk.TasksClient satisfies it.
type TasksLister interface {
	List(
		ctx context.Context,
		workspaceID string,
		selector sdk.TasksSelector,
		opts *meta.ListOptions,
	) (sdk.TaskList, error)
}

// Row is the presentation of a single task.
type Row struct {
	ID              string
	Code            string
	Title           string
	DueDate         string
	StatusLabel     string
	StatusVariant   string
	PriorityLabel   string
	PriorityVariant string
	// AssigneeName is empty for an unassigned task.
	AssigneeName     string
	AssigneeInitials string
	AvatarColor      string
	AvatarAlt        string
}

// View describes exactly one of four things to render: a loading indicator,
// an error, the zero state, or rows.
type View struct {
	Loading bool
	Err     error
	Empty   bool
	Message string
	Rows    []Row
}

// RecentTasks binds the task list of a single workspace to a query. Its data
// is always considered stale, so every Mount retrieves the list again.
type RecentTasks struct {
	*query.Observer
}

// NewRecentTasks returns RecentTasks for the workspace with the specified ID.
// When workspaceID is empty, the list is never retrieved.
func NewRecentTasks(
	queries *query.Client,
	lister TasksLister,
	workspaceID string,
) *RecentTasks {
	return &RecentTasks{
		Observer: queries.Observe(
			query.Options{
				Key: query.Key{"all-tasks", workspaceID},
				Fn: func(ctx context.Context) (interface{}, error) {
					taskList, err := lister.List(
						ctx,
						workspaceID,
						sdk.TasksSelector{},
						nil,
					)
					if err != nil {
						return nil, err
					}
					return &taskList, nil
				},
				Enabled:   workspaceID != "",
				StaleTime: 0,
			},
		),
	}
}

// View renders the current state of the query.
func (r *RecentTasks) View() View {
	return Render(r.State())
}

// Render maps a snapshot of the task list query to a View. Branches are
// mutually exclusive and are chosen in this order: loading, failed without
// data, empty, rows.
func Render(state query.State) View {
	if state.IsLoading {
		return View{Loading: true}
	}
	taskList, _ := state.Data.(*sdk.TaskList)
	if taskList == nil && state.Err != nil {
		return View{Err: state.Err}
	}
	if taskList == nil || len(taskList.Tasks) == 0 {
		return View{
			Empty:   true,
			Message: ZeroStateMessage,
		}
	}
	rows := make([]Row, len(taskList.Tasks))
	for i, task := range taskList.Tasks {
		rows[i] = NewRow(task)
	}
	return View{Rows: rows}
}

// NewRow derives the presentation of a single task.
func NewRow(task sdk.Task) Row {
	var name, picture string
	if task.AssignedTo != nil {
		name = task.AssignedTo.Name
		picture = task.AssignedTo.ProfilePicture
	}
	return Row{
		ID:               task.ID,
		Code:             task.TaskCode,
		Title:            task.Title,
		DueDate:          task.DueDate,
		StatusLabel:      TransformStatus(string(task.Status)),
		StatusVariant:    StatusVariant(task.Status),
		PriorityLabel:    TransformStatus(string(task.Priority)),
		PriorityVariant:  PriorityVariant(task.Priority),
		AssigneeName:     name,
		AssigneeInitials: Initials(name),
		AvatarColor:      AvatarColor(name),
		AvatarAlt:        picture,
	}
}
