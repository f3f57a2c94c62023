package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGinMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	httpMetrics := newHTTPMetrics(registry, Config{
		ServiceName: "scout",
		Environment: "test",
	})

	r := gin.New()
	r.Use(GinMiddleware(httpMetrics))
	r.GET("/api/gold/daily/:org_id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/gold/daily/42", nil)
	r.ServeHTTP(w, req)

	got := testutil.ToFloat64(httpMetrics.requests.WithLabelValues("/api/gold/daily/:org_id", "GET", "200"))
	if got != 1 {
		t.Fatalf("expected request count 1, got %v", got)
	}
}

func TestGinMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	httpMetrics := newHTTPMetrics(registry, Config{
		ServiceName: "scout",
		Environment: "test",
	})

	r := gin.New()
	r.Use(GinMiddleware(httpMetrics))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)

	got := testutil.ToFloat64(httpMetrics.requests.WithLabelValues("unmatched", "GET", "404"))
	if got != 1 {
		t.Fatalf("expected request count 1, got %v", got)
	}
}
