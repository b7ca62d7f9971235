package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/gateway"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server exposes the session manager over HTTP and forwards /api traffic
// to the REST API with the stored bearer token attached.
type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	router         chi.Router
	config         config.Config
	sessions       *auth.SessionManager
	store          gateway.SessionLoader
	apiBase        *url.URL
	proxyTransport http.RoundTripper
	metrics        http.Handler
	logger         zerolog.Logger
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithProxyTransport sets the transport the /api proxy sends requests over,
// before the bearer token is attached.
func WithProxyTransport(rt http.RoundTripper) ServerOption {
	return func(s *Server) {
		s.proxyTransport = rt
	}
}

func New(cfg config.Config, manager *auth.SessionManager, store gateway.SessionLoader, options ...ServerOption) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if manager == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if store == nil {
		return nil, errors.New("[Server New] credential store is required")
	}

	apiBase, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid API base URL: %w", err)
	}

	s := &Server{
		env:            cfg.GetEnv(),
		config:         cfg,
		sessions:       manager,
		store:          store,
		apiBase:        apiBase,
		proxyTransport: http.DefaultTransport,
		logger:         log.Logger.With().Str("component", "server").Logger(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		s.logRoute(method, route)
		return nil
	})
}

func (s *Server) logRoute(method, path string) {
	s.logger.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}
