package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gamehaqqs/gamehaqqs/pkg/metrics"
)

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/api/leaderboard/:period", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.CollectAndCount(metrics.APILatency)
	for _, period := range []string{"weekly", "monthly"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leaderboard/"+period, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Both requests share one series keyed by the route template.
	require.Equal(t, before+1, testutil.CollectAndCount(metrics.APILatency))
}
