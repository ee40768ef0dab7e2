package webmachinery

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigWithDefaults(t *testing.T) {
	config := NewConfigWithDefaults()
	require.Equal(t, 8080, config.Port())
	require.False(t, config.TLSEnabled())
	require.Equal(t, 10*time.Second, config.ShutdownTimeout())
}

func TestGetConfigFromEnvironment(t *testing.T) {
	testCases := []struct {
		name       string
		setup      func()
		assertions func(Config, error)
	}{
		{
			name: "TLS enabled without cert path",
			setup: func() {
				os.Setenv("WEBUI_TLS_ENABLED", "true")
			},
			assertions: func(_ Config, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "WEBUI_TLS_CERT_PATH")
			},
		},
		{
			name: "TLS enabled without key path",
			setup: func() {
				os.Setenv("WEBUI_TLS_ENABLED", "true")
				os.Setenv("WEBUI_TLS_CERT_PATH", "/tls/tls.crt")
			},
			assertions: func(_ Config, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "WEBUI_TLS_KEY_PATH")
			},
		},
		{
			name: "success",
			setup: func() {
				os.Setenv("WEBUI_PORT", "9090")
				os.Setenv("WEBUI_TLS_ENABLED", "true")
				os.Setenv("WEBUI_TLS_CERT_PATH", "/tls/tls.crt")
				os.Setenv("WEBUI_TLS_KEY_PATH", "/tls/tls.key")
				os.Setenv("WEBUI_SHUTDOWN_TIMEOUT", "3s")
			},
			assertions: func(config Config, err error) {
				require.NoError(t, err)
				require.Equal(t, 9090, config.Port())
				require.True(t, config.TLSEnabled())
				require.Equal(t, "/tls/tls.crt", config.TLSCertPath())
				require.Equal(t, "/tls/tls.key", config.TLSKeyPath())
				require.Equal(t, 3*time.Second, config.ShutdownTimeout())
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			for _, name := range []string{
				"WEBUI_PORT",
				"WEBUI_TLS_ENABLED",
				"WEBUI_TLS_CERT_PATH",
				"WEBUI_TLS_KEY_PATH",
				"WEBUI_SHUTDOWN_TIMEOUT",
			} {
				os.Unsetenv(name)
			}
			testCase.setup()
			testCase.assertions(GetConfigFromEnvironment())
		})
	}
}
