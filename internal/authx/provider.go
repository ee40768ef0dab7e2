// Package authx makes the signed-in user and the current workspace available
// to everything rendered beneath a Provider.
package authx

import (
	"context"
	"sync"

	"github.com/krancour/taskdash/internal/query"
	"github.com/krancour/taskdash/sdk"
	"github.com/krancour/taskdash/sdk/meta"
)

// RootPath is where a principal is sent when they may not access the current
// workspace.
const RootPath = "/"

// UsersGetter retrieves the user associated with the current session.
// sdk.UsersClient satisfies it.
type UsersGetter interface {
	GetCurrent(context.Context) (sdk.User, error)
}

// WorkspaceGetter retrieves a workspace by ID. sdk.WorkspacesClient satisfies
// it.
type WorkspaceGetter interface {
	Get(ctx context.Context, id string) (sdk.Workspace, error)
}

// Navigator performs navigation on behalf of a Provider.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts an ordinary function to the Navigator interface.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// State is an immutable snapshot of the authentication context.
type State struct {
	// User is nil until the current user has been retrieved.
	User *sdk.User
	// Workspace is nil until the current workspace has been retrieved or when
	// there is no current workspace.
	Workspace *sdk.Workspace
	// Err is the error from retrieving the user or, if there was none, the
	// error from retrieving the workspace.
	Err error
	// IsLoading is true while the user is being retrieved for the first time.
	IsLoading bool
	// WorkspaceLoading is true while the workspace is being retrieved for the
	// first time.
	WorkspaceLoading bool
	// IsFetching is true while the user is being retrieved.
	IsFetching bool
}

// Value is what a Provider makes available to its subtree: a State snapshot
// plus the means to refresh it.
type Value struct {
	State
	refetchAuth      func()
	refetchWorkspace func()
}

// RefetchAuth retrieves the current user again.
func (v Value) RefetchAuth() {
	if v.refetchAuth != nil {
		v.refetchAuth()
	}
}

// RefetchWorkspace retrieves the current workspace again. It does nothing when
// there is no current workspace.
func (v Value) RefetchWorkspace() {
	if v.refetchWorkspace != nil {
		v.refetchWorkspace()
	}
}

// Provider combines the current-user and current-workspace queries into a
// single State and sends the principal to RootPath whenever the API server
// denies them access to the current workspace.
type Provider struct {
	userQuery      *query.Observer
	workspaceQuery *query.Observer

	mu        sync.Mutex
	navigator Navigator
	// handledErrCount identifies the most recent workspace failure that has
	// already been checked for navigation. It never decreases.
	handledErrCount int
	listeners       map[int]func(State)
	nextListenerID  int
	unsubscribes    []func()
}

// NewProvider returns a Provider for the workspace with the specified ID. An
// empty workspaceID means there is no current workspace and the workspace
// query never runs.
func NewProvider(
	queries *query.Client,
	users UsersGetter,
	workspaces WorkspaceGetter,
	workspaceID string,
	navigator Navigator,
) *Provider {
	return &Provider{
		userQuery: queries.Observe(
			query.Options{
				Key: query.Key{"auth-user"},
				Fn: func(ctx context.Context) (interface{}, error) {
					user, err := users.GetCurrent(ctx)
					if err != nil {
						return nil, err
					}
					return &user, nil
				},
				Enabled: true,
			},
		),
		workspaceQuery: queries.Observe(
			query.Options{
				Key: query.Key{"workspace", workspaceID},
				Fn: func(ctx context.Context) (interface{}, error) {
					workspace, err := workspaces.Get(ctx, workspaceID)
					if err != nil {
						return nil, err
					}
					return &workspace, nil
				},
				Enabled: workspaceID != "",
			},
		),
		navigator: navigator,
		listeners: map[int]func(State){},
	}
}

// Mount starts both queries. Fetches are bound to ctx.
func (p *Provider) Mount(ctx context.Context) {
	p.mu.Lock()
	p.unsubscribes = []func(){
		p.userQuery.Subscribe(p.onQueryChange),
		p.workspaceQuery.Subscribe(p.onQueryChange),
	}
	p.mu.Unlock()
	p.userQuery.Mount(ctx)
	p.workspaceQuery.Mount(ctx)
	p.sync()
}

// Unmount stops both queries, abandoning any fetches in flight.
func (p *Provider) Unmount() {
	p.mu.Lock()
	unsubscribes := p.unsubscribes
	p.unsubscribes = nil
	p.mu.Unlock()
	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
	p.userQuery.Unmount()
	p.workspaceQuery.Unmount()
}

// State returns the current snapshot.
func (p *Provider) State() State {
	return merge(p.userQuery.State(), p.workspaceQuery.State())
}

// Value returns the current snapshot along with refetch capabilities.
func (p *Provider) Value() Value {
	v := Value{
		State:       p.State(),
		refetchAuth: p.RefetchAuth,
	}
	if p.workspaceQuery.Enabled() {
		v.refetchWorkspace = p.RefetchWorkspace
	}
	return v
}

// Subscribe registers fn to receive every new snapshot. The returned function
// cancels the subscription.
func (p *Provider) Subscribe(fn func(State)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextListenerID
	p.nextListenerID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// Settled blocks until neither query is fetching and returns the resulting
// snapshot. If ctx is done first, the current snapshot is returned along with
// the context's error.
func (p *Provider) Settled(ctx context.Context) (State, error) {
	if _, err := p.userQuery.Settled(ctx); err != nil {
		return p.State(), err
	}
	if _, err := p.workspaceQuery.Settled(ctx); err != nil {
		return p.State(), err
	}
	return p.sync(), nil
}

// RefetchAuth retrieves the current user again.
func (p *Provider) RefetchAuth() {
	p.userQuery.Refetch()
}

// RefetchWorkspace retrieves the current workspace again. It does nothing when
// there is no current workspace.
func (p *Provider) RefetchWorkspace() {
	p.workspaceQuery.Refetch()
}

// SetNavigator replaces the Navigator. If the current workspace failure is an
// authorization failure, the new Navigator is asked to navigate as well.
func (p *Provider) SetNavigator(navigator Navigator) {
	workspaceState := p.workspaceQuery.State()
	p.mu.Lock()
	p.navigator = navigator
	if workspaceState.ErrUpdateCount > p.handledErrCount {
		p.handledErrCount = workspaceState.ErrUpdateCount
	}
	p.mu.Unlock()
	if isAccessUnauthorized(workspaceState.Err) {
		navigator.Navigate(RootPath)
	}
}

func (p *Provider) onQueryChange(query.State) {
	p.sync()
}

// sync publishes the current snapshot and navigates if the workspace query has
// failed in a new way that denies access.
func (p *Provider) sync() State {
	userState := p.userQuery.State()
	workspaceState := p.workspaceQuery.State()
	state := merge(userState, workspaceState)

	p.mu.Lock()
	var navigator Navigator
	// Snapshots may arrive out of order. Only a failure newer than the last one
	// handled can navigate.
	if workspaceState.ErrUpdateCount > p.handledErrCount {
		p.handledErrCount = workspaceState.ErrUpdateCount
		if isAccessUnauthorized(workspaceState.Err) {
			navigator = p.navigator
		}
	}
	listeners := make([]func(State), 0, len(p.listeners))
	for _, listener := range p.listeners {
		listeners = append(listeners, listener)
	}
	p.mu.Unlock()

	if navigator != nil {
		navigator.Navigate(RootPath)
	}
	for _, listener := range listeners {
		listener(state)
	}
	return state
}

func merge(userState, workspaceState query.State) State {
	state := State{
		IsLoading:        userState.IsLoading,
		WorkspaceLoading: workspaceState.IsLoading,
		IsFetching:       userState.IsFetching,
	}
	if user, ok := userState.Data.(*sdk.User); ok {
		u := *user
		state.User = &u
	}
	if workspace, ok := workspaceState.Data.(*sdk.Workspace); ok {
		w := *workspace
		state.Workspace = &w
	}
	if userState.Err != nil {
		state.Err = userState.Err
	} else {
		state.Err = workspaceState.Err
	}
	return state
}

func isAccessUnauthorized(err error) bool {
	return err != nil &&
		meta.ErrorCode(err) == meta.ErrorCodeAccessUnauthorized
}
