package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/piiguard/internal/metrics"
)

// MetricsServer serves the Prometheus exporter on a listener separate from the API.
// Only route templates and attribute kinds are ever recorded as labels.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewMetricsServer mounts GET /metrics and a liveness probe at GET /health.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(provider.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	return &MetricsServer{
		server: newHTTPServer(host, port, router),
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start blocks until the listener stops.
func (s *MetricsServer) Start(ctx context.Context) error {
	return serve(s.server, s.logger, "metrics server")
}

// Shutdown waits for in-flight scrapes until ctx expires.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
