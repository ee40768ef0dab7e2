package main

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/krancour/taskdash/internal/session"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) error {
	return newApp().RunContext(
		testContext(t),
		append([]string{"taskdash"}, args...),
	)
}

func withoutTerminal(t *testing.T) {
	original := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdinIsTerminal = original
	})
}

func TestLoginWithoutTerminalRequiresCredentials(t *testing.T) {
	useTempHome(t)
	withoutTerminal(t)
	api := newTestAPI(t)
	testCases := []struct {
		name string
		args []string
	}{
		{
			name: "email and password missing",
			args: []string{"login", "-s", api.URL},
		},
		{
			name: "password missing",
			args: []string{"login", "-s", api.URL, "-e", "ana@example.com"},
		},
		{
			name: "email missing",
			args: []string{"login", "-s", api.URL, "-p", "secret"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := runApp(t, testCase.args...)
			require.Error(t, err)
			require.Contains(
				t,
				err.Error(),
				"--email and --password are required",
			)
			_, err = getConfig()
			require.Error(t, err)
		})
	}
}

func TestLoginWithBadCredentials(t *testing.T) {
	useTempHome(t)
	withoutTerminal(t)
	api := newTestAPI(t)
	err := runApp(
		t,
		"login", "-s", api.URL, "-e", "ana@example.com", "-p", "wrong",
	)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid credentials")
	_, err = getConfig()
	require.Error(t, err)
}

func TestLoginWhoamiLogout(t *testing.T) {
	home := useTempHome(t)
	withoutTerminal(t)
	api := newTestAPI(t)

	require.NoError(
		t,
		runApp(
			t,
			"login", "-s", api.URL, "-e", "ana@example.com", "-p", "secret",
		),
	)
	cfg, err := getConfig()
	require.NoError(t, err)
	require.Equal(t, api.URL, cfg.APIAddress)
	sessionBytes, err := ioutil.ReadFile(
		filepath.Join(home, ".taskdash", session.DefaultName),
	)
	require.NoError(t, err)
	require.Contains(t, string(sessionBytes), testToken)

	require.NoError(t, runApp(t, "whoami", "-o", "json"))
	require.NoError(t, runApp(t, "task", "recent", "-o", "json"))
	require.NoError(t, runApp(t, "task", "recent", "-w", "empty"))

	err = runApp(t, "task", "recent", "-w", "forbidden")
	require.EqualError(t, err, `you do not have access to workspace "forbidden"`)

	require.NoError(t, runApp(t, "logout"))
	require.Equal(t, 1, api.logouts())
	_, err = getConfig()
	require.Error(t, err)
	store, err := getSessionStore(context.Background())
	require.NoError(t, err)
	_, ok := store.AccessToken()
	require.False(t, ok)
}

func TestLogoutWithoutTokenSkipsAPI(t *testing.T) {
	useTempHome(t)
	api := newTestAPI(t)
	require.NoError(t, saveConfig(&config{APIAddress: api.URL}))
	require.NoError(t, runApp(t, "logout"))
	require.Equal(t, 0, api.logouts())
	_, err := getConfig()
	require.Error(t, err)
}

func TestCommandsRequireLogin(t *testing.T) {
	useTempHome(t)
	for _, args := range [][]string{
		{"whoami"},
		{"task", "recent"},
		{"logout"},
	} {
		err := runApp(t, args...)
		require.Error(t, err)
		require.Contains(t, err.Error(), "taskdash login")
	}
}

func TestCommandsRejectUnknownOutputFormat(t *testing.T) {
	useTempHome(t)
	for _, args := range [][]string{
		{"whoami", "-o", "xml"},
		{"task", "recent", "-o", "xml"},
	} {
		require.EqualError(
			t,
			runApp(t, args...),
			`unknown output format "xml"`,
		)
	}
}
