package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
	"github.com/krancour/taskdash/internal/version"
	"github.com/krancour/taskdash/webui/internal/lib/oidc"
	"github.com/krancour/taskdash/webui/internal/lib/webmachinery"
	"github.com/krancour/taskdash/webui/internal/pages"
	"github.com/krancour/taskdash/webui/internal/sessions"
	"github.com/krancour/taskdash/webui/internal/workspaces"
)

func main() {
	// We need to parse flags for glog-related options to take effect
	flag.Parse()

	glog.Infof(
		"Starting taskdash web UI -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	config, err := getConfigFromEnvironment()
	if err != nil {
		glog.Fatal(err)
	}

	storage, err := config.sessionStorage(ctx)
	if err != nil {
		glog.Fatal(err)
	}
	glog.Infof("Keeping browser sessions in %s storage", config.SessionStorage)

	renderer, err := pages.NewRenderer()
	if err != nil {
		glog.Fatal(err)
	}

	apiClient := config.apiClientFactory()
	sessionFilter := sessions.NewFilter(storage, config.SecureCookies)

	sessionsConfig := sessions.EndpointsConfig{
		SessionFilter: sessionFilter,
		APIClient:     apiClient,
		Renderer:      renderer,
	}
	oauth2Config, oidcTokenVerifier, err :=
		oidc.GetConfigAndVerifierFromEnvironment(ctx)
	if err != nil {
		glog.Fatal(err)
	}
	// Only assign non-nil values so that the interfaces remain nil when OIDC is
	// not in use
	if oauth2Config != nil && oidcTokenVerifier != nil {
		sessionsConfig.OAuth2Config = oauth2Config
		sessionsConfig.OIDCTokenVerifier = oidcTokenVerifier
		glog.Info("OpenID Connect authentication is enabled")
	}

	serverConfig, err := webmachinery.GetConfigFromEnvironment()
	if err != nil {
		glog.Fatal(err)
	}

	server := webmachinery.NewServer(
		serverConfig,
		[]webmachinery.Endpoints{
			sessions.NewEndpoints(sessionsConfig),
			workspaces.NewEndpoints(
				workspaces.EndpointsConfig{
					SessionFilter: sessionFilter,
					ProviderFilter: workspaces.NewProviderFilter(
						apiClient,
						config.RenderTimeout,
					),
					Renderer:        renderer,
					OIDCEnabled:     sessionsConfig.OAuth2Config != nil,
					RefreshInterval: config.RefreshInterval,
				},
			),
		},
	)

	if err := server.ListenAndServe(ctx); err != nil &&
		err != http.ErrServerClosed {
		glog.Fatal(err)
	}
}
