package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/krancour/taskdash/sdk/internal/restmachinery"
	"github.com/pkg/errors"
)

// Workspace is a tenant scope under which tasks and users are grouped.
type Workspace struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	InviteCode  string     `json:"inviteCode,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// WorkspacesClient is the specialized client for retrieving Workspaces from
// the task API.
type WorkspacesClient interface {
	// Get retrieves a single Workspace by its identifier. Callers that may not
	// access the Workspace receive a *meta.ErrAuthorization whose code is
	// meta.ErrorCodeAccessUnauthorized.
	Get(ctx context.Context, id string) (Workspace, error)
}

type workspacesClient struct {
	*restmachinery.BaseClient
}

// NewWorkspacesClient returns a specialized client for retrieving Workspaces.
func NewWorkspacesClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) WorkspacesClient {
	return &workspacesClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, tokens, opts),
	}
}

func (w *workspacesClient) Get(
	ctx context.Context,
	id string,
) (Workspace, error) {
	resp := struct {
		Message   string    `json:"message"`
		Workspace Workspace `json:"workspace"`
	}{}
	if id == "" {
		return resp.Workspace, errors.New("a workspace ID is required")
	}
	err := w.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("workspace/%s", url.PathEscape(id)),
			AuthHeaders: w.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	)
	return resp.Workspace, err
}
