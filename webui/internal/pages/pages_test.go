package pages

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/krancour/taskdash/internal/tasks"
	"github.com/krancour/taskdash/sdk"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, data interface{}) *httptest.ResponseRecorder {
	r, err := NewRenderer()
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.Render(rr, http.StatusOK, name, data)
	return rr
}

func TestRefreshSeconds(t *testing.T) {
	require.Equal(t, 1, AutoRefresh{}.RefreshSeconds())
	require.Equal(t, 1, AutoRefresh{Interval: time.Millisecond}.RefreshSeconds())
	require.Equal(t, 3, AutoRefresh{Interval: 3 * time.Second}.RefreshSeconds())
}

func TestRenderUnknownPage(t *testing.T) {
	rr := render(t, "bogus", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRenderLanding(t *testing.T) {
	testCases := []struct {
		name       string
		data       LandingPage
		assertions func(string)
	}{
		{
			name: "signed out",
			data: LandingPage{
				OIDCEnabled: true,
				Error:       "Invalid email or password",
			},
			assertions: func(body string) {
				require.Contains(t, body, `action="/login"`)
				require.Contains(t, body, "/auth/oidc/login")
				require.Contains(t, body, "Invalid email or password")
				require.NotContains(t, body, "http-equiv")
			},
		},
		{
			name: "signed in",
			data: LandingPage{
				User: &sdk.User{Name: "Ana", CurrentWorkspace: "w1"},
			},
			assertions: func(body string) {
				require.Contains(t, body, "Signed in as Ana")
				require.Contains(t, body, `href="/workspace/w1"`)
				require.NotContains(t, body, `action="/login"`)
				require.NotContains(t, body, "/auth/oidc/login")
			},
		},
		{
			name: "still loading",
			data: LandingPage{
				AutoRefresh: AutoRefresh{Refresh: true, Interval: 2 * time.Second},
				Loading:     true,
			},
			assertions: func(body string) {
				require.Contains(t, body, `<meta http-equiv="refresh" content="2">`)
				require.Contains(t, body, "Loading...")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rr := render(t, Landing, testCase.data)
			require.Equal(t, http.StatusOK, rr.Code)
			require.True(
				t,
				strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"),
			)
			testCase.assertions(rr.Body.String())
		})
	}
}

func TestRenderDashboard(t *testing.T) {
	rr := render(
		t,
		Dashboard,
		DashboardPage{
			User:      &sdk.User{Name: "Ana"},
			Workspace: &sdk.Workspace{Name: "Acme <Inc>"},
			Tasks: tasks.View{
				Rows: []tasks.Row{
					tasks.NewRow(
						sdk.Task{
							ID:         "1",
							TaskCode:   "T-1",
							Title:      "Fix bug",
							DueDate:    "2024-01-01",
							Status:     sdk.TaskStatusInProgress,
							Priority:   sdk.TaskPriorityHigh,
							AssignedTo: &sdk.TaskAssignee{Name: "Ana"},
						},
					),
				},
			},
		},
	)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "<title>Acme &lt;Inc&gt; | taskdash</title>")
	require.Contains(t, body, "T-1")
	require.Contains(t, body, "Fix bug")
	require.Contains(t, body, "Due: 2024-01-01")
	require.Contains(t, body, "In Progress")
	require.Contains(t, body, "badge-HIGH")
	require.Contains(t, body, ">A</span>")
}

func TestRenderRecentTasksFragment(t *testing.T) {
	testCases := []struct {
		name     string
		view     tasks.View
		expected string
		absent   string
	}{
		{
			name:     "loading",
			view:     tasks.View{Loading: true},
			expected: "Loading...",
			absent:   tasks.ZeroStateMessage,
		},
		{
			name:     "error",
			view:     tasks.View{Err: errors.New("could not load tasks")},
			expected: "could not load tasks",
			absent:   tasks.ZeroStateMessage,
		},
		{
			name:     "empty",
			view:     tasks.View{Empty: true, Message: tasks.ZeroStateMessage},
			expected: tasks.ZeroStateMessage,
			absent:   "<li",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rr := render(t, RecentTasksFragment, RecentTasksPage{Tasks: testCase.view})
			require.Equal(t, http.StatusOK, rr.Code)
			body := rr.Body.String()
			require.Contains(t, body, testCase.expected)
			require.NotContains(t, body, testCase.absent)
			require.NotContains(t, body, "<html")
		})
	}
}
