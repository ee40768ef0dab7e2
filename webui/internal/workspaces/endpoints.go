package workspaces

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/taskdash/internal/authx"
	"github.com/krancour/taskdash/internal/tasks"
	"github.com/krancour/taskdash/webui/internal/lib/webmachinery"
	"github.com/krancour/taskdash/webui/internal/pages"
	"github.com/pkg/errors"
)

// EndpointsConfig represents configuration for the workspace endpoints.
type EndpointsConfig struct {
	SessionFilter  webmachinery.Filter
	ProviderFilter webmachinery.Filter
	Renderer       pages.Renderer
	OIDCEnabled    bool
	// RefreshInterval is how long a browser waits before reloading a page that
	// was rendered while data was still loading.
	RefreshInterval time.Duration
}

type endpoints struct {
	config EndpointsConfig
	filter webmachinery.Filter
}

// NewEndpoints returns endpoints for the landing page and workspace
// dashboards.
func NewEndpoints(config EndpointsConfig) webmachinery.Endpoints {
	return &endpoints{
		config: config,
		filter: webmachinery.Chain(config.SessionFilter, config.ProviderFilter),
	}
}

func (e *endpoints) Register(router *mux.Router) {
	// Landing page
	router.HandleFunc(
		"/",
		e.filter.Decorate(e.landing),
	).Methods(http.MethodGet)

	// Workspace dashboard
	router.HandleFunc(
		"/workspace/{workspaceID}",
		e.filter.Decorate(e.dashboard),
	).Methods(http.MethodGet)

	// Recent tasks fragment
	router.HandleFunc(
		"/workspace/{workspaceID}/tasks/recent",
		e.filter.Decorate(e.recentTasks),
	).Methods(http.MethodGet)
}

func (e *endpoints) landing(w http.ResponseWriter, r *http.Request) {
	auth := authx.FromContext(r.Context())
	page := pages.LandingPage{
		User:        auth.User,
		Loading:     auth.IsLoading,
		OIDCEnabled: e.config.OIDCEnabled,
	}
	page.Refresh = auth.IsLoading
	page.Interval = e.config.RefreshInterval
	// Failing to retrieve the user because nobody is signed in is expected
	if auth.User == nil && auth.Err != nil &&
		webmachinery.HTTPStatus(auth.Err) != http.StatusUnauthorized {
		page.Error = errors.Cause(auth.Err).Error()
	}
	e.config.Renderer.Render(w, http.StatusOK, pages.Landing, page)
}

func (e *endpoints) dashboard(w http.ResponseWriter, r *http.Request) {
	auth := authx.FromContext(r.Context())
	if !e.checkAuth(w, r, auth) {
		return
	}
	view := e.recentTasksView(r)
	page := pages.DashboardPage{
		User:             auth.User,
		Workspace:        auth.Workspace,
		WorkspaceLoading: auth.WorkspaceLoading,
		Tasks:            view,
	}
	page.Refresh = auth.IsLoading || auth.WorkspaceLoading || view.Loading
	page.Interval = e.config.RefreshInterval
	e.config.Renderer.Render(w, http.StatusOK, pages.Dashboard, page)
}

func (e *endpoints) recentTasks(w http.ResponseWriter, r *http.Request) {
	auth := authx.FromContext(r.Context())
	if !e.checkAuth(w, r, auth) {
		return
	}
	view := e.recentTasksView(r)
	page := pages.RecentTasksPage{
		Tasks: view,
	}
	page.Refresh = view.Loading
	page.Interval = e.config.RefreshInterval
	e.config.Renderer.Render(w, http.StatusOK, pages.RecentTasksFragment, page)
}

// checkAuth sends anyone who is not signed in back to the landing page and
// reports any other failure to load the user or workspace. It returns false
// if the request has been fully handled.
func (e *endpoints) checkAuth(
	w http.ResponseWriter,
	r *http.Request,
	auth authx.Value,
) bool {
	if auth.IsLoading {
		return true
	}
	if auth.User == nil {
		http.Redirect(w, r, authx.RootPath, http.StatusSeeOther)
		return false
	}
	if auth.Err != nil {
		http.Error(
			w,
			errors.Cause(auth.Err).Error(),
			webmachinery.HTTPStatus(auth.Err),
		)
		return false
	}
	return true
}

func (e *endpoints) recentTasksView(r *http.Request) tasks.View {
	scope := requestScopeFromContext(r.Context())
	recent := tasks.NewRecentTasks(
		scope.queries,
		scope.apiClient.Tasks(),
		mux.Vars(r)["workspaceID"],
	)
	recent.Mount(r.Context())
	defer recent.Unmount()
	ctx, cancel := context.WithDeadline(r.Context(), scope.deadline)
	defer cancel()
	// A timeout is not an error. The view renders as loading.
	recent.Settled(ctx) // nolint: errcheck
	return recent.View()
}
