package sessions

import (
	"context"
	"net/http"

	"github.com/coreos/go-oidc"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/krancour/taskdash/internal/crypto"
	"github.com/krancour/taskdash/sdk"
	"github.com/krancour/taskdash/sdk/meta"
	"github.com/krancour/taskdash/webui/internal/lib/webmachinery"
	"github.com/krancour/taskdash/webui/internal/pages"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/oauth2"
)

// oidcStateName is the name of the entry, within a browser session's storage,
// holding the OAuth2 state of an OpenID Connect login in progress.
const oidcStateName = "oidc-state"

// APIClientFactory returns an API client that authenticates every request
// using whatever token the provided TokenSource holds at the time.
type APIClientFactory func(sdk.TokenSource) sdk.APIClient

// OAuth2Config is satisfied by *oauth2.Config.
type OAuth2Config interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(
		ctx context.Context,
		code string,
		opts ...oauth2.AuthCodeOption,
	) (*oauth2.Token, error)
}

// IDTokenVerifier is satisfied by *oidc.IDTokenVerifier.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// EndpointsConfig represents configuration for the session endpoints.
type EndpointsConfig struct {
	SessionFilter webmachinery.Filter
	APIClient     APIClientFactory
	Renderer      pages.Renderer
	// OAuth2Config and OIDCTokenVerifier are both nil when OpenID Connect is
	// not in use.
	OAuth2Config      OAuth2Config
	OIDCTokenVerifier IDTokenVerifier
}

type endpoints struct {
	*webmachinery.BaseEndpoints
	config                 EndpointsConfig
	tokenRequestBodySchema gojsonschema.JSONLoader
}

// NewEndpoints returns endpoints for signing in and out.
func NewEndpoints(config EndpointsConfig) webmachinery.Endpoints {
	return &endpoints{
		BaseEndpoints: &webmachinery.BaseEndpoints{},
		config:        config,
		tokenRequestBodySchema: gojsonschema.NewStringLoader(`
			{
				"type": "object",
				"required": ["accessToken"],
				"additionalProperties": false,
				"properties": {
					"accessToken": {
						"type": ["string", "null"]
					}
				}
			}
		`),
	}
}

func (e *endpoints) Register(router *mux.Router) {
	// Sign in with email and password
	router.HandleFunc(
		"/login",
		e.config.SessionFilter.Decorate(e.login),
	).Methods(http.MethodPost)

	// Sign out
	router.HandleFunc(
		"/logout",
		e.config.SessionFilter.Decorate(e.logout),
	).Methods(http.MethodPost)

	// Begin OpenID Connect sign in
	router.HandleFunc(
		"/auth/oidc/login",
		e.config.SessionFilter.Decorate(e.oidcLogin),
	).Methods(http.MethodGet)

	// OpenID Connect callback
	router.HandleFunc(
		"/auth/oidc/callback",
		e.config.SessionFilter.Decorate(e.oidcCallback),
	).Methods(http.MethodGet)

	// Set token
	router.HandleFunc(
		"/v1/session/token",
		e.config.SessionFilter.Decorate(e.setToken),
	).Methods(http.MethodPut)

	// Clear token
	router.HandleFunc(
		"/v1/session/token",
		e.config.SessionFilter.Decorate(e.clearToken),
	).Methods(http.MethodDelete)
}

func (e *endpoints) login(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	result, err := e.config.APIClient(store).Auth().Login(
		r.Context(),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
	)
	if err != nil {
		e.config.Renderer.Render(
			w,
			webmachinery.HTTPStatus(err),
			pages.Landing,
			pages.LandingPage{
				OIDCEnabled: e.config.OAuth2Config != nil,
				Error:       errors.Cause(err).Error(),
			},
		)
		return
	}
	if err := store.SetAccessToken(r.Context(), &result.AccessToken); err != nil {
		glog.Error(errors.Wrap(err, "error storing access token"))
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	target := "/"
	if result.User.CurrentWorkspace != "" {
		target = "/workspace/" + result.User.CurrentWorkspace
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (e *endpoints) logout(w http.ResponseWriter, r *http.Request) {
	store := StoreFromContext(r.Context())
	if _, ok := store.AccessToken(); ok {
		if err := e.config.APIClient(store).Auth().Logout(r.Context()); err != nil {
			// The local session is cleared regardless
			glog.Warning(errors.Wrap(err, "error ending session with API server"))
		}
	}
	if err := store.ClearAccessToken(r.Context()); err != nil {
		glog.Error(errors.Wrap(err, "error clearing access token"))
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (e *endpoints) oidcLogin(w http.ResponseWriter, r *http.Request) {
	if e.config.OAuth2Config == nil {
		http.Error(
			w,
			"Authentication using OpenID Connect is not supported by this server.",
			http.StatusNotImplemented,
		)
		return
	}
	oauth2State := crypto.NewToken(30)
	if err := storageFromContext(r.Context()).SetItem(
		r.Context(),
		oidcStateName,
		[]byte(oauth2State),
	); err != nil {
		glog.Error(errors.Wrap(err, "error storing OAuth2 state"))
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}
	http.Redirect(
		w,
		r,
		e.config.OAuth2Config.AuthCodeURL(oauth2State),
		http.StatusSeeOther,
	)
}

func (e *endpoints) oidcCallback(w http.ResponseWriter, r *http.Request) {
	if e.config.OAuth2Config == nil || e.config.OIDCTokenVerifier == nil {
		http.Error(
			w,
			"Authentication using OpenID Connect is not supported by this server.",
			http.StatusNotImplemented,
		)
		return
	}
	oauth2State := r.URL.Query().Get("state")
	oidcCode := r.URL.Query().Get("code")
	if oauth2State == "" || oidcCode == "" {
		http.Error(
			w,
			`The OpenID Connect authentication completion request lacked one or `+
				`both of the "state" and "code" query parameters.`,
			http.StatusBadRequest,
		)
		return
	}
	if err := e.authenticate(r.Context(), oauth2State, oidcCode); err != nil {
		glog.Error(
			errors.Wrap(err, "error completing OpenID Connect authentication"),
		)
		http.Error(w, errors.Cause(err).Error(), webmachinery.HTTPStatus(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (e *endpoints) authenticate(
	ctx context.Context,
	oauth2State string,
	oidcCode string,
) error {
	storage := storageFromContext(ctx)
	expectedState, found, err := storage.GetItem(ctx, oidcStateName)
	if err != nil {
		return errors.Wrap(err, "error retrieving OAuth2 state")
	}
	if !found || string(expectedState) != oauth2State {
		return errors.Wrap(
			&meta.ErrBadRequest{
				Message:   "The OAuth2 state did not match.",
				ErrorCode: meta.ErrorCodeValidationError,
			},
			"error validating OAuth2 state",
		)
	}
	if err = storage.RemoveItem(ctx, oidcStateName); err != nil {
		return errors.Wrap(err, "error removing OAuth2 state")
	}
	oauth2Token, err := e.config.OAuth2Config.Exchange(ctx, oidcCode)
	if err != nil {
		return errors.Wrap(
			err,
			"error exchanging OpenID Connect code for OAuth2 token",
		)
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return errors.New(
			"OAuth2 token did not include an OpenID Connect identity token",
		)
	}
	if _, err = e.config.OIDCTokenVerifier.Verify(ctx, rawIDToken); err != nil {
		return errors.Wrap(err, "error verifying OpenID Connect identity token")
	}
	if err = StoreFromContext(ctx).SetAccessToken(ctx, &rawIDToken); err != nil {
		return errors.Wrap(err, "error storing access token")
	}
	return nil
}

func (e *endpoints) setToken(w http.ResponseWriter, r *http.Request) {
	reqBody := struct {
		AccessToken *string `json:"accessToken"`
	}{}
	e.ServeRequest(
		webmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: e.tokenRequestBodySchema,
			ReqBodyObj:          &reqBody,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, StoreFromContext(r.Context()).SetAccessToken(
					r.Context(),
					reqBody.AccessToken,
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (e *endpoints) clearToken(w http.ResponseWriter, r *http.Request) {
	e.ServeRequest(
		webmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{},
					StoreFromContext(r.Context()).ClearAccessToken(r.Context())
			},
			SuccessCode: http.StatusOK,
		},
	)
}
