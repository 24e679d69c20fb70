// Package http provides the API server, its middleware stack and the metrics server.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/config"
	"github.com/allisson/piiguard/internal/metrics"
	userHTTP "github.com/allisson/piiguard/internal/user/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new API server. SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// newHTTPServer applies the timeouts shared by the API and metrics listeners.
func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// serve blocks until srv stops. A graceful shutdown is not an error.
func serve(srv *http.Server, logger *slog.Logger, name string) error {
	logger.Info("starting "+name, slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// SetupRouter builds the gin engine with middleware and all routes. The lookup rate
// limiter's cleanup goroutine lives as long as ctx.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	userHandler *userHTTP.UserHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsHandler := corsMiddleware(cfg, s.logger); corsHandler != nil {
		router.Use(corsHandler)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	users := v1.Group("/users")
	{
		users.POST("", userHandler.RegisterHandler)
		users.GET("/:id", userHandler.GetHandler)
		users.PATCH("/:id/contact", userHandler.UpdateContactHandler)
		users.GET("/:id/profile", userHandler.GetProfileHandler)
		users.PUT("/:id/profile", userHandler.UpdateProfileHandler)

		lookups := users.Group("")
		if cfg.RateLimitLookupEnabled {
			lookups.Use(userHTTP.LookupRateLimitMiddleware(
				ctx,
				cfg.RateLimitLookupRequestsPerSec,
				cfg.RateLimitLookupBurst,
				s.logger,
			))
		}
		lookups.POST("/lookup", userHandler.LookupHandler)
		lookups.GET("/availability", userHandler.AvailabilityHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		return errors.New("router not configured: call SetupRouter before Start")
	}

	return serve(s.server, s.logger, "api server")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	dbStatus := "ok"
	if s.db == nil {
		dbStatus = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			dbStatus = "error"
		}
	}

	status, code := "ready", http.StatusOK
	if dbStatus != "ok" {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"database": dbStatus},
	})
}
