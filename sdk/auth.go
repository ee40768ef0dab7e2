package sdk

import (
	"context"
	"net/http"

	"github.com/krancour/taskdash/sdk/internal/restmachinery"
)

// LoginResult is what the API server returns upon successful password
// authentication.
type LoginResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	// AccessToken is the bearer token to present on subsequent requests.
	AccessToken string `json:"access_token"`
}

// AuthClient is the specialized client for establishing and ending sessions
// with the task API.
type AuthClient interface {
	// Login exchanges an email address and password for an access token.
	Login(ctx context.Context, email, password string) (LoginResult, error)
	// Logout ends the session associated with the client's access token.
	Logout(context.Context) error
}

type authClient struct {
	*restmachinery.BaseClient
}

// NewAuthClient returns a specialized client for establishing and ending
// sessions.
func NewAuthClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) AuthClient {
	return &authClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, tokens, opts),
	}
}

func (a *authClient) Login(
	ctx context.Context,
	email string,
	password string,
) (LoginResult, error) {
	result := LoginResult{}
	err := a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   "auth/login",
			ReqBodyObj: struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}{
				Email:    email,
				Password: password,
			},
			SuccessCode: http.StatusOK,
			RespObj:     &result,
		},
	)
	return result, err
}

func (a *authClient) Logout(ctx context.Context) error {
	return a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "auth/logout",
			AuthHeaders: a.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}
