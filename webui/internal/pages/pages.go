package pages

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/taskdash/internal/tasks"
	"github.com/krancour/taskdash/sdk"
	"github.com/pkg/errors"
)

//go:embed templates
var templatesFS embed.FS

// Page names accepted by Renderer.Render
const (
	Landing             = "landing"
	Dashboard           = "dashboard"
	RecentTasksFragment = "recent_tasks_fragment"
)

// AutoRefresh asks the browser to reload a page that was rendered before all
// of its data arrived.
type AutoRefresh struct {
	Refresh  bool
	Interval time.Duration
}

// RefreshSeconds returns the refresh interval in whole seconds, never less
// than one.
func (a AutoRefresh) RefreshSeconds() int {
	seconds := int(a.Interval / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}

// LandingPage is the data rendered by the Landing page.
type LandingPage struct {
	AutoRefresh
	// User is nil when nobody is signed in.
	User        *sdk.User
	Loading     bool
	OIDCEnabled bool
	Error       string
}

// DashboardPage is the data rendered by the Dashboard page.
type DashboardPage struct {
	AutoRefresh
	User             *sdk.User
	Workspace        *sdk.Workspace
	WorkspaceLoading bool
	Tasks            tasks.View
}

// RecentTasksPage is the data rendered by the RecentTasksFragment page.
type RecentTasksPage struct {
	AutoRefresh
	Tasks tasks.View
}

// Renderer renders HTML pages.
type Renderer interface {
	// Render writes the named page, populated with data, with the specified
	// status code.
	Render(w http.ResponseWriter, statusCode int, name string, data interface{})
}

type renderer struct {
	templates map[string]*template.Template
	entries   map[string]string
}

// NewRenderer returns a Renderer for all pages.
func NewRenderer() (Renderer, error) {
	r := &renderer{
		templates: map[string]*template.Template{},
		entries: map[string]string{
			Landing:             "layout",
			Dashboard:           "layout",
			RecentTasksFragment: "fragment",
		},
	}
	for name := range r.entries {
		tmpl, err := template.ParseFS(
			templatesFS,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing template %q", name)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *renderer) Render(
	w http.ResponseWriter,
	statusCode int,
	name string,
	data interface{},
) {
	tmpl, ok := r.templates[name]
	if !ok {
		glog.Errorf("no page named %q", name)
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	buf := &bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(buf, r.entries[name], data); err != nil {
		glog.Error(errors.Wrapf(err, "error rendering page %q", name))
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := buf.WriteTo(w); err != nil {
		glog.Error(errors.Wrap(err, "error writing response body"))
	}
}
