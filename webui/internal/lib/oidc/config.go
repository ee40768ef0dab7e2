package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const envconfigPrefix = "OIDC"

// CallbackPath is the path, relative to the web front-end's base URL, that
// the identity provider redirects to upon successful authentication.
const CallbackPath = "auth/oidc/callback"

type config struct {
	Enabled bool `envconfig:"ENABLED"`
	// ProviderURL examples:
	//   Google: https://accounts.google.com
	//   Azure Active Directory: https://login.microsoftonline.com/{tenant id}/v2.0
	ProviderURL     string `envconfig:"PROVIDER_URL"`
	ClientID        string `envconfig:"CLIENT_ID"`
	ClientSecret    string `envconfig:"CLIENT_SECRET"`
	RedirectURLBase string `envconfig:"REDIRECT_URL_BASE"`
}

func (c config) validate() error {
	for _, required := range []struct {
		name  string
		value string
	}{
		{name: "PROVIDER_URL", value: c.ProviderURL},
		{name: "CLIENT_ID", value: c.ClientID},
		{name: "CLIENT_SECRET", value: c.ClientSecret},
		{name: "REDIRECT_URL_BASE", value: c.RedirectURLBase},
	} {
		if required.value == "" {
			return errors.Errorf(
				"with OIDC enabled, a value is required for the %s_%s "+
					"environment variable",
				envconfigPrefix,
				required.name,
			)
		}
	}
	return nil
}

// GetConfigAndVerifierFromEnvironment returns OAuth client configuration and an
// OIDC identity token verifier, all derived from environment variables. If
// OIDC is not enabled, both are nil.
func GetConfigAndVerifierFromEnvironment(ctx context.Context) (
	*oauth2.Config,
	*oidc.IDTokenVerifier,
	error,
) {
	c := config{}
	if err := envconfig.Process(envconfigPrefix, &c); err != nil {
		return nil, nil, errors.Wrap(
			err,
			"error getting OIDC configuration from environment",
		)
	}

	if !c.Enabled {
		return nil, nil, nil // We're not using OIDC
	}

	if err := c.validate(); err != nil {
		return nil, nil, err
	}

	provider, err := oidc.NewProvider(ctx, c.ProviderURL)
	if err != nil {
		return nil, nil, errors.Wrapf(
			err,
			"error discovering OIDC provider %s",
			c.ProviderURL,
		)
	}

	oauth2Config := &oauth2.Config{
		Endpoint:     provider.Endpoint(),
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  fmt.Sprintf("%s/%s", c.RedirectURLBase, CallbackPath),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(
		&oidc.Config{
			ClientID: c.ClientID,
		},
	)

	return oauth2Config, verifier, nil
}
