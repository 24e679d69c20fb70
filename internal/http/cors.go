package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/piiguard/internal/config"
)

// corsMiddleware allows the consular web front end to call the user routes from the
// browser. It returns nil unless CORS is enabled with at least one origin.
func corsMiddleware(cfg *config.Config, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.CORSEnabled {
		return nil
	}

	origins := strings.FieldsFunc(cfg.CORSAllowOrigins, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(origins) == 0 {
		logger.Warn("cors enabled without allowed origins, middleware not installed")
		return nil
	}

	logger.Info("cors enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowHeaders:  []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        time.Hour,
	})
}
