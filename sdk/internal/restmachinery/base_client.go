package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/krancour/taskdash/sdk/meta"
	"github.com/pkg/errors"
)

// TokenSource is implemented by anything that can supply the access token to
// present to the API server. It is consulted each time a request is built, so
// a token that changes over the lifetime of a client is picked up
// automatically.
type TokenSource interface {
	// AccessToken returns the current token and whether one is present.
	AccessToken() (string, bool)
}

// StaticToken is a TokenSource that always returns the same token. The empty
// string means no token.
type StaticToken string

// AccessToken implements TokenSource.
func (s StaticToken) AccessToken() (string, bool) {
	return string(s), s != ""
}

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecureConnections indicates whether SSL errors should be ignored.
	AllowInsecureConnections bool
}

// OutboundRequest describes a single call to the task API server. Path is
// relative to the API address. A response whose status is not SuccessCode is
// converted into an error.
type OutboundRequest struct {
	Method      string
	Path        string
	QueryParams map[string]string
	AuthHeaders map[string]string
	Headers     map[string]string
	// ReqBodyObj is sent as is when it is a []byte and is otherwise marshaled
	// to JSON.
	ReqBodyObj  interface{}
	SuccessCode int
	// RespObj, if non-nil, receives the unmarshaled response body.
	RespObj     interface{}
}

// BaseClient provides "API machinery" used by all the specialized API
// clients.
type BaseClient struct {
	APIAddress string
	Tokens     TokenSource
	HTTPClient *http.Client
}

// NewBaseClient returns a BaseClient for the API server at the specified
// address.
func NewBaseClient(
	apiAddress string,
	tokens TokenSource,
	opts *APIClientOptions,
) *BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &BaseClient{
		APIAddress: strings.TrimSuffix(apiAddress, "/"),
		Tokens:     tokens,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecureConnections,
				},
			},
		},
	}
}

// BearerTokenAuthHeaders returns an Authorization header carrying the current
// access token. If there is no token, no header is returned.
func (b *BaseClient) BearerTokenAuthHeaders() map[string]string {
	token, ok := b.Tokens.AccessToken()
	if !ok {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// AppendListQueryParams adds paging query parameters derived from the
// provided meta.ListOptions to the provided map.
func (b *BaseClient) AppendListQueryParams(
	queryParams map[string]string,
	opts *meta.ListOptions,
) map[string]string {
	if queryParams == nil {
		queryParams = map[string]string{}
	}
	if opts == nil {
		return queryParams
	}
	if opts.PageNumber > 0 {
		queryParams["pageNumber"] = fmt.Sprintf("%d", opts.PageNumber)
	}
	if opts.PageSize > 0 {
		queryParams["pageSize"] = fmt.Sprintf("%d", opts.PageSize)
	}
	return queryParams
}

// ExecuteRequest submits the request and, on success, unmarshals the response
// body into req.RespObj.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj != nil {
		respBodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits the request and returns the raw response. A response
// with an unexpected status code is converted to one of the structured error
// types from the meta package.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, req.Path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	if reqBodyReader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.AuthHeaders {
		r.Header.Add(k, v)
	}
	for k, v := range req.Headers {
		r.Header.Add(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}

	if (req.SuccessCode == 0 && resp.StatusCode != http.StatusOK) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		defer resp.Body.Close()
		// HTTP Response code hints at what sort of error might be in the body
		// of the response
		var apiErr error
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr = &meta.ErrAuthentication{}
		case http.StatusForbidden:
			apiErr = &meta.ErrAuthorization{}
		case http.StatusBadRequest:
			apiErr = &meta.ErrBadRequest{}
		case http.StatusNotFound:
			apiErr = &meta.ErrNotFound{}
		case http.StatusConflict:
			apiErr = &meta.ErrConflict{}
		case http.StatusInternalServerError:
			apiErr = &meta.ErrInternalServer{}
		default:
			apiErr = &meta.ErrUnexpectedStatus{
				StatusCode: resp.StatusCode,
			}
		}
		bodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error reading error response body")
		}
		if len(bytes.TrimSpace(bodyBytes)) == 0 {
			return nil, apiErr
		}
		// A body that isn't a structured error, such as an HTML page from a
		// proxy, leaves apiErr as the status code alone describes it
		json.Unmarshal(bodyBytes, apiErr) // nolint: errcheck
		return nil, apiErr
	}
	return resp, nil
}
