package workspaces

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/krancour/taskdash/internal/authx"
	"github.com/krancour/taskdash/internal/query"
	"github.com/krancour/taskdash/sdk"
	"github.com/krancour/taskdash/webui/internal/lib/webmachinery"
	"github.com/krancour/taskdash/webui/internal/sessions"
)

type requestScopeContextKey struct{}

// requestScope holds what every component rendered for a single request
// shares.
type requestScope struct {
	queries   *query.Client
	apiClient sdk.APIClient
	// deadline is when rendering must begin whether or not all data has
	// arrived.
	deadline time.Time
}

func contextWithRequestScope(
	ctx context.Context,
	scope requestScope,
) context.Context {
	return context.WithValue(ctx, requestScopeContextKey{}, scope)
}

func requestScopeFromContext(ctx context.Context) requestScope {
	return ctx.Value(requestScopeContextKey{}).(requestScope)
}

// redirectNavigator records the first navigation requested of it so that it
// can be carried out as an HTTP redirect.
type redirectNavigator struct {
	mu   sync.Mutex
	path string
}

func (r *redirectNavigator) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path == "" {
		r.path = path
	}
}

func (r *redirectNavigator) destination() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path, r.path != ""
}

type providerFilter struct {
	apiClient     sessions.APIClientFactory
	renderTimeout time.Duration
}

// NewProviderFilter returns a webmachinery.Filter that wraps each request in
// an auth provider for the workspace named by the request's workspaceID path
// variable, if any. It must be applied inside the session filter. The
// provider's Value is available to the wrapped handler through
// authx.FromContext. Navigation requested by the provider is carried out as a
// 303 redirect instead of invoking the wrapped handler.
func NewProviderFilter(
	apiClient sessions.APIClientFactory,
	renderTimeout time.Duration,
) webmachinery.Filter {
	return &providerFilter{
		apiClient:     apiClient,
		renderTimeout: renderTimeout,
	}
}

func (p *providerFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := requestScope{
			queries:   query.NewClient(),
			apiClient: p.apiClient(sessions.StoreFromContext(r.Context())),
			deadline:  time.Now().Add(p.renderTimeout),
		}
		navigator := &redirectNavigator{}
		provider := authx.NewProvider(
			scope.queries,
			scope.apiClient.Users(),
			scope.apiClient.Workspaces(),
			mux.Vars(r)["workspaceID"],
			navigator,
		)
		provider.Mount(r.Context())
		defer provider.Unmount()

		settleCtx, cancel := context.WithDeadline(r.Context(), scope.deadline)
		defer cancel()
		// A timeout is not an error. Whatever has not arrived yet renders as
		// loading.
		provider.Settled(settleCtx) // nolint: errcheck

		if path, ok := navigator.destination(); ok {
			http.Redirect(w, r, path, http.StatusSeeOther)
			return
		}

		ctx := authx.ContextWithValue(r.Context(), provider.Value())
		ctx = contextWithRequestScope(ctx, scope)
		handle(w, r.WithContext(ctx))
	}
}
