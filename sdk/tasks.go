package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/krancour/taskdash/sdk/internal/restmachinery"
	"github.com/krancour/taskdash/sdk/meta"
	"github.com/pkg/errors"
)

// TaskStatus represents where a Task is in its lifecycle.
type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusInReview   TaskStatus = "IN_REVIEW"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskPriority represents the relative urgency of a Task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// TaskAssignee is the abbreviated representation of the User a Task is
// assigned to.
type TaskAssignee struct {
	ID             string `json:"_id,omitempty"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// Task is a unit of work within a Workspace.
type Task struct {
	ID          string       `json:"_id"`
	TaskCode    string       `json:"taskCode"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	DueDate     string       `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	// AssignedTo is nil for unassigned Tasks.
	AssignedTo *TaskAssignee `json:"assignedTo,omitempty"`
}

// TaskList is an ordered, pageable list of Tasks.
type TaskList struct {
	Tasks      []Task           `json:"tasks"`
	Pagination *meta.Pagination `json:"pagination,omitempty"`
}

// TasksSelector represents useful filter criteria when selecting multiple
// Tasks for API operations. The zero value selects all Tasks in a Workspace.
type TasksSelector struct {
	ProjectID  string
	Keyword    string
	AssignedTo []string
	Status     []TaskStatus
	Priority   []TaskPriority
	DueDate    string
}

// TasksClient is the specialized client for retrieving Tasks from the task
// API.
type TasksClient interface {
	// List returns the Tasks of the specified Workspace, in the order the API
	// server returns them.
	List(
		ctx context.Context,
		workspaceID string,
		selector TasksSelector,
		opts *meta.ListOptions,
	) (TaskList, error)
}

type tasksClient struct {
	*restmachinery.BaseClient
}

// NewTasksClient returns a specialized client for retrieving Tasks.
func NewTasksClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) TasksClient {
	return &tasksClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, tokens, opts),
	}
}

func (t *tasksClient) List(
	ctx context.Context,
	workspaceID string,
	selector TasksSelector,
	opts *meta.ListOptions,
) (TaskList, error) {
	tasks := TaskList{}
	if workspaceID == "" {
		return tasks, errors.New("a workspace ID is required")
	}
	queryParams := map[string]string{}
	if selector.ProjectID != "" {
		queryParams["projectId"] = selector.ProjectID
	}
	if selector.Keyword != "" {
		queryParams["keyword"] = selector.Keyword
	}
	if len(selector.AssignedTo) > 0 {
		queryParams["assignedTo"] = strings.Join(selector.AssignedTo, ",")
	}
	if len(selector.Status) > 0 {
		statuses := make([]string, len(selector.Status))
		for i, status := range selector.Status {
			statuses[i] = string(status)
		}
		queryParams["status"] = strings.Join(statuses, ",")
	}
	if len(selector.Priority) > 0 {
		priorities := make([]string, len(selector.Priority))
		for i, priority := range selector.Priority {
			priorities[i] = string(priority)
		}
		queryParams["priority"] = strings.Join(priorities, ",")
	}
	if selector.DueDate != "" {
		queryParams["dueDate"] = selector.DueDate
	}
	path := fmt.Sprintf("task/workspace/%s/all", url.PathEscape(workspaceID))
	err := t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        path,
			AuthHeaders: t.BearerTokenAuthHeaders(),
			QueryParams: t.AppendListQueryParams(queryParams, opts),
			SuccessCode: http.StatusOK,
			RespObj:     &tasks,
		},
	)
	if tasks.Tasks == nil {
		tasks.Tasks = []Task{}
	}
	return tasks, err
}
