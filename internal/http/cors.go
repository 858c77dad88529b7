package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var errWildcardOrigin = errors.New("wildcard origin cannot be combined with credentialed requests")

// createCORSMiddleware builds CORS for the browser frontend. The session travels in a
// cookie, so credentials are allowed and every origin must be listed explicitly.
// Returns nil when CORS is disabled or the origin list is unusable.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, err := parseOrigins(allowOrigins)
	if err != nil {
		logger.Warn("CORS not applied", slog.Any("error", err))
		return nil
	}
	if len(origins) == 0 {
		logger.Warn("CORS not applied: no origins configured")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	return cors.New(corsConfig(origins))
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowHeaders:     []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// parseOrigins splits a comma-separated origin list, dropping blanks.
func parseOrigins(raw string) ([]string, error) {
	var origins []string
	for part := range strings.SplitSeq(raw, ",") {
		origin := strings.TrimSpace(part)
		switch origin {
		case "":
			continue
		case "*":
			return nil, errWildcardOrigin
		}
		origins = append(origins, origin)
	}
	return origins, nil
}
