package redis

import (
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	os.Unsetenv("REDIS_HOST")
	_, err := Client()
	require.Error(t, err)
	require.Contains(t, err.Error(), "REDIS_HOST")

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	os.Setenv("REDIS_HOST", mr.Host())
	os.Setenv("REDIS_PORT", mr.Port())
	defer os.Unsetenv("REDIS_HOST")
	defer os.Unsetenv("REDIS_PORT")
	client, err := Client()
	require.NoError(t, err)
	defer client.Close()
	require.Equal(t, mr.Addr(), client.Options().Addr)
}
