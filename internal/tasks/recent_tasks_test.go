package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/krancour/taskdash/internal/query"
	"github.com/krancour/taskdash/sdk"
	"github.com/krancour/taskdash/sdk/meta"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu       sync.Mutex
	taskList sdk.TaskList
	err      error
	calls    int
}

func (f *fakeLister) List(
	context.Context,
	string,
	sdk.TasksSelector,
	*meta.ListOptions,
) (sdk.TaskList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.taskList, f.err
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func mountAndSettle(t *testing.T, r *RecentTasks) View {
	r.Mount(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := r.Settled(ctx)
	require.NoError(t, err)
	return r.View()
}

func TestRender(t *testing.T) {
	testCases := []struct {
		name       string
		state      query.State
		assertions func(View)
	}{
		{
			name:  "loading",
			state: query.State{IsLoading: true, IsFetching: true},
			assertions: func(view View) {
				require.Equal(t, View{Loading: true}, view)
			},
		},
		{
			name: "failed without data",
			state: query.State{
				Status: query.StatusError,
				Err:    errors.New("boom"),
			},
			assertions: func(view View) {
				require.EqualError(t, view.Err, "boom")
				require.False(t, view.Empty)
				require.Empty(t, view.Rows)
			},
		},
		{
			name: "failed with stale data",
			state: query.State{
				Status: query.StatusError,
				Err:    errors.New("boom"),
				Data: &sdk.TaskList{
					Tasks: []sdk.Task{{ID: "1"}},
				},
			},
			assertions: func(view View) {
				require.NoError(t, view.Err)
				require.Len(t, view.Rows, 1)
			},
		},
		{
			name: "empty",
			state: query.State{
				Status: query.StatusSuccess,
				Data:   &sdk.TaskList{Tasks: []sdk.Task{}},
			},
			assertions: func(view View) {
				require.True(t, view.Empty)
				require.Equal(t, ZeroStateMessage, view.Message)
				require.Empty(t, view.Rows)
				require.False(t, view.Loading)
			},
		},
		{
			name: "rows in server order",
			state: query.State{
				Status: query.StatusSuccess,
				Data: &sdk.TaskList{
					Tasks: []sdk.Task{
						{ID: "3", TaskCode: "T-3"},
						{ID: "1", TaskCode: "T-1"},
						{ID: "2", TaskCode: "T-2"},
					},
				},
			},
			assertions: func(view View) {
				require.False(t, view.Empty)
				require.Len(t, view.Rows, 3)
				require.Equal(t, "T-3", view.Rows[0].Code)
				require.Equal(t, "T-1", view.Rows[1].Code)
				require.Equal(t, "T-2", view.Rows[2].Code)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertions(Render(testCase.state))
		})
	}
}

func TestNewRow(t *testing.T) {
	row := NewRow(
		sdk.Task{
			ID:       "1",
			TaskCode: "T-1",
			Title:    "Fix bug",
			DueDate:  "2024-01-01",
			Status:   sdk.TaskStatusInProgress,
			Priority: sdk.TaskPriorityHigh,
			AssignedTo: &sdk.TaskAssignee{
				Name:           "Ana",
				ProfilePicture: "https://example.com/ana.png",
			},
		},
	)
	require.Equal(t, "T-1", row.Code)
	require.Equal(t, "Fix bug", row.Title)
	require.Equal(t, "2024-01-01", row.DueDate)
	require.Equal(t, "In Progress", row.StatusLabel)
	require.Equal(t, "IN_PROGRESS", row.StatusVariant)
	require.Equal(t, "High", row.PriorityLabel)
	require.Equal(t, "HIGH", row.PriorityVariant)
	require.Equal(t, "A", row.AssigneeInitials)
	require.NotEmpty(t, row.AvatarColor)
	require.Equal(t, "https://example.com/ana.png", row.AvatarAlt)
}

func TestNewRowUnassigned(t *testing.T) {
	row := NewRow(sdk.Task{ID: "1", Status: "ARCHIVED"})
	require.Empty(t, row.AssigneeName)
	require.Empty(t, row.AssigneeInitials)
	require.Equal(t, AvatarColor(""), row.AvatarColor)
	require.Equal(t, DefaultVariant, row.StatusVariant)
}

func TestRecentTasks(t *testing.T) {
	lister := &fakeLister{
		taskList: sdk.TaskList{
			Tasks: []sdk.Task{
				{
					ID:         "1",
					TaskCode:   "T-1",
					Title:      "Fix bug",
					DueDate:    "2024-01-01",
					Status:     sdk.TaskStatusInProgress,
					Priority:   sdk.TaskPriorityHigh,
					AssignedTo: &sdk.TaskAssignee{Name: "Ana"},
				},
			},
		},
	}
	queries := query.NewClient()
	r := NewRecentTasks(queries, lister, "w1")
	view := mountAndSettle(t, r)
	r.Unmount()
	require.Len(t, view.Rows, 1)
	require.Equal(t, "T-1", view.Rows[0].Code)
	require.Equal(t, "A", view.Rows[0].AssigneeInitials)

	// Every mount retrieves the list again
	r = NewRecentTasks(queries, lister, "w1")
	mountAndSettle(t, r)
	r.Unmount()
	require.Equal(t, 2, lister.callCount())
}

func TestRecentTasksWithoutWorkspace(t *testing.T) {
	lister := &fakeLister{}
	r := NewRecentTasks(query.NewClient(), lister, "")
	view := mountAndSettle(t, r)
	defer r.Unmount()
	r.Refetch()
	require.Equal(t, 0, lister.callCount())
	require.True(t, view.Empty)
}

func TestRecentTasksError(t *testing.T) {
	lister := &fakeLister{
		err: &meta.ErrInternalServer{Message: "database unavailable"},
	}
	r := NewRecentTasks(query.NewClient(), lister, "w1")
	view := mountAndSettle(t, r)
	defer r.Unmount()
	require.Error(t, view.Err)
	require.Empty(t, view.Rows)
}
