// Package http provides the API and metrics HTTP servers.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clio-platform/clio/internal/config"
	logSecretsHTTP "github.com/clio-platform/clio/internal/logsecrets/http"
	"github.com/clio-platform/clio/internal/metrics"
	sessionHTTP "github.com/clio-platform/clio/internal/session/http"
)

// readinessTimeout bounds each dependency check of the readiness probe.
const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// Server is the API server.
type Server struct {
	server     *http.Server
	router     *gin.Engine
	logger     *slog.Logger
	components map[string]Pinger
}

// NewServer creates the API server. components are the dependencies reported by the
// readiness probe, keyed by name. A nil entry is always reported as failing.
func NewServer(host string, port int, logger *slog.Logger, components map[string]Pinger) *Server {
	return &Server{
		logger:     logger,
		components: components,
		server:     newHTTPServer(host, port),
	}
}

// SetupRouter builds the gin engine. Every /api route runs behind the session
// middleware; health endpoints do not.
func (s *Server) SetupRouter(
	cfg *config.Config,
	sessionMiddleware gin.HandlerFunc,
	sessionHandler *sessionHTTP.SessionHandler,
	logSecretsHandler *logSecretsHTTP.LogSecretsHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))
	router.Use(SecurityHeadersMiddleware())

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	api := router.Group("/api", sessionMiddleware)
	{
		auth := api.Group("/auth")
		auth.GET("/me", sessionHandler.MeHandler)
		auth.POST("/regenerate", sessionHandler.RegenerateHandler)
		auth.POST("/logout", sessionHandler.LogoutHandler)
		auth.GET("/sessions", sessionHandler.ListSessionsHandler)

		logs := api.Group("/logs")
		logs.GET("/:id/secrets", logSecretsHandler.GetHandler)
		logs.PUT("/:id/secrets", logSecretsHandler.UpdateHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(_ context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router
	return serve(s.server, s.logger, "http server")
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return stop(ctx, s.server, s.logger, "http server")
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings every dependency. The process is only ready when all of
// them answer.
func (s *Server) readinessHandler(c *gin.Context) {
	ready := len(s.components) > 0
	components := make(map[string]string, len(s.components))

	for name, pinger := range s.components {
		if pinger == nil {
			components[name] = "error"
			ready = false
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := pinger.Ping(ctx)
		cancel()

		if err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", name), slog.Any("error", err))
			components[name] = "error"
			ready = false
			continue
		}
		components[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
