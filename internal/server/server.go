package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront/internal/auth"
	"github.com/hongminglow/storefront/internal/config"
	"github.com/hongminglow/storefront/internal/fakeapi"
	"github.com/hongminglow/storefront/internal/http/handlers"
	"github.com/hongminglow/storefront/internal/http/respond"
	"github.com/hongminglow/storefront/internal/metrics"
	"github.com/hongminglow/storefront/internal/middleware"
)

// Server wraps an http.Server with the test backend routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.FakeAPIConfig, backend *fakeapi.Backend, logger logrus.FieldLogger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, backend, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewHandler builds the routed handler without binding a listener.
func NewHandler(cfg config.FakeAPIConfig, backend *fakeapi.Backend, logger logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	r.Use(middleware.Metrics, limiter.Handler)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(backend, tokens, logger).Register(r)
	handlers.NewCatalogHandler(backend, tokens, logger).Register(r)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return middleware.CORS(cfg.CORSOrigins)(middleware.Logging(logger)(r))
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
