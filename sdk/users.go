package sdk

import (
	"context"
	"net/http"
	"time"

	"github.com/krancour/taskdash/sdk/internal/restmachinery"
)

// User represents a human user of the task API.
type User struct {
	// ID is an immutable identifier assigned by the API server.
	ID string `json:"_id"`
	// Name is the user's display name.
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	// ProfilePicture is the URL of the user's avatar, if they have one.
	ProfilePicture string `json:"profilePicture,omitempty"`
	// CurrentWorkspace identifies the workspace the user last worked in.
	CurrentWorkspace string     `json:"currentWorkspace,omitempty"`
	IsActive         bool       `json:"isActive,omitempty"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
}

// UsersClient is the specialized client for retrieving Users from the task
// API.
type UsersClient interface {
	// GetCurrent returns the User associated with the client's access token.
	GetCurrent(context.Context) (User, error)
}

type usersClient struct {
	*restmachinery.BaseClient
}

// NewUsersClient returns a specialized client for retrieving Users.
func NewUsersClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) UsersClient {
	return &usersClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, tokens, opts),
	}
}

func (u *usersClient) GetCurrent(ctx context.Context) (User, error) {
	resp := struct {
		Message string `json:"message"`
		User    User   `json:"user"`
	}{}
	err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "user/current",
			AuthHeaders: u.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	)
	return resp.User, err
}
