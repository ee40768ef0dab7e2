package sdk

import (
	"crypto/tls"
	"net/http"
	"testing"

	"github.com/krancour/taskdash/sdk/internal/restmachinery"
	"github.com/stretchr/testify/require"
)

const (
	testAPIAddress          = "localhost:8000/api"
	testAPIToken            = "11235813213455"
	testClientAllowInsecure = true
	testWorkspaceID         = "64f1c0ffee"
)

var testClientOpts = &APIClientOptions{
	AllowInsecureConnections: testClientAllowInsecure,
}

func requireBaseClient(t *testing.T, baseClient *restmachinery.BaseClient) {
	require.Equal(t, testAPIAddress, baseClient.APIAddress)
	token, ok := baseClient.Tokens.AccessToken()
	require.True(t, ok)
	require.Equal(t, testAPIToken, token)
	require.IsType(t, &http.Client{}, baseClient.HTTPClient)
	require.IsType(t, &http.Transport{}, baseClient.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.Equal(
		t,
		testClientAllowInsecure,
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
}

func requireBearerToken(t *testing.T, r *http.Request) {
	require.Equal(t, "Bearer "+testAPIToken, r.Header.Get("Authorization"))
}
