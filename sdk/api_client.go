package sdk

import "github.com/krancour/taskdash/sdk/internal/restmachinery"

// TokenSource is implemented by anything that can supply the access token to
// present to the API server. It is consulted on every request.
type TokenSource = restmachinery.TokenSource

// StaticToken is a TokenSource that always returns the same token. The empty
// string means no token.
type StaticToken = restmachinery.StaticToken

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions = restmachinery.APIClientOptions

// APIClient is the root client for the task API. It exposes specialized
// clients for each family of resources.
type APIClient interface {
	// Auth returns a specialized client for establishing and ending sessions.
	Auth() AuthClient
	// Users returns a specialized client for User retrieval.
	Users() UsersClient
	// Workspaces returns a specialized client for Workspace retrieval.
	Workspaces() WorkspacesClient
	// Tasks returns a specialized client for Task retrieval.
	Tasks() TasksClient
}

type apiClient struct {
	authClient       AuthClient
	usersClient      UsersClient
	workspacesClient WorkspacesClient
	tasksClient      TasksClient
}

// NewAPIClient returns an APIClient for the task API at the specified
// address. Every request it makes is authorized with whatever token the
// provided TokenSource holds at the time the request is made.
func NewAPIClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) APIClient {
	return &apiClient{
		authClient:       NewAuthClient(apiAddress, tokens, opts),
		usersClient:      NewUsersClient(apiAddress, tokens, opts),
		workspacesClient: NewWorkspacesClient(apiAddress, tokens, opts),
		tasksClient:      NewTasksClient(apiAddress, tokens, opts),
	}
}

func (a *apiClient) Auth() AuthClient {
	return a.authClient
}

func (a *apiClient) Users() UsersClient {
	return a.usersClient
}

func (a *apiClient) Workspaces() WorkspacesClient {
	return a.workspacesClient
}

func (a *apiClient) Tasks() TasksClient {
	return a.tasksClient
}
