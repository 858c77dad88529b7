package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstrumentedRouter(t *testing.T, namespace string) (*gin.Engine, *Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), namespace))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/api/logs/:id/secrets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.GET("/api/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session"})
	})

	return router, provider
}

func serve(router *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	t.Run("Success_UsesRoutePattern", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t, "clio_http")

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/logs/12/secrets"))
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/logs/34/secrets"))

		output := scrape(t, provider)
		assertMetricLine(t, output, `clio_http_http_requests_total`,
			`method="GET".*path="/api/logs/:id/secrets".*status_code="200"`, `2`)
		assert.NotContains(t, output, `/api/logs/12/secrets`)
	})

	t.Run("Success_RecordsRejections", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t, "clio_http")

		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/auth/me"))

		assertMetricLine(t, scrape(t, provider), `clio_http_http_requests_total`,
			`path="/api/auth/me".*status_code="401"`, `1`)
	})

	t.Run("Success_UnmatchedRouteIsUnknown", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t, "clio_http")

		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/wp-admin/setup.php"))

		output := scrape(t, provider)
		assertMetricLine(t, output, `clio_http_http_requests_total`, `path="unknown".*status_code="404"`, `1`)
		assert.NotContains(t, output, "wp-admin")
	})

	t.Run("Success_SkipsProbes", func(t *testing.T) {
		router, provider := newInstrumentedRouter(t, "clio_http")

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health"))

		assert.NotContains(t, scrape(t, provider), `path="/health"`)
	})
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "RoutePattern", input: "/api/logs/:id/secrets", expected: "/api/logs/:id/secrets"},
		{name: "EmptyPath", input: "", expected: "unknown"},
		{name: "RootPath", input: "/", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, routeLabel(tt.input))
		})
	}
}
