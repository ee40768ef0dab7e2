package webmachinery

import (
	"context"
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/krancour/taskdash/internal/file"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server is an interface for the component that responds to HTTP requests.
type Server interface {
	// ListenAndServe causes the server to start serving HTTP requests. It will
	// block until an error occurs or the context is canceled, in which case the
	// server is shut down gracefully.
	ListenAndServe(ctx context.Context) error
}

type server struct {
	*BaseEndpoints // The server itself exposes health check endpoints
	config         Config
	handler        http.Handler
}

// NewServer returns a web server.
func NewServer(config Config, endpoints []Endpoints) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	s := &server{
		BaseEndpoints: &BaseEndpoints{},
		config:        config,
		handler: cors.New(
			cors.Options{
				AllowedMethods: []string{"DELETE", "GET", "POST", "PUT"},
			},
		).Handler(router),
	}

	// Health check
	router.HandleFunc(
		"/healthz",
		s.checkHealth, // No filters applied to this request
	).Methods(http.MethodGet)

	return s
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", s.config.Port()),
	}
	tlsEnabled := s.config.TLSEnabled() &&
		file.Exists(s.config.TLSCertPath()) &&
		file.Exists(s.config.TLSKeyPath())
	if tlsEnabled {
		srv.Handler = s.handler
	} else {
		srv.Handler = h2c.NewHandler(s.handler, &http2.Server{})
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsEnabled {
			glog.Infof(
				"Web server is listening with TLS enabled on 0.0.0.0:%d",
				s.config.Port(),
			)
			errCh <- srv.ListenAndServeTLS(
				s.config.TLSCertPath(),
				s.config.TLSKeyPath(),
			)
			return
		}
		glog.Infof(
			"Web server is listening without TLS on 0.0.0.0:%d",
			s.config.Port(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel :=
		context.WithTimeout(context.Background(), s.config.ShutdownTimeout())
	defer cancel()
	glog.Info("Web server is shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *server) checkHealth(w http.ResponseWriter, r *http.Request) {
	s.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}
