package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/gamehaqqs/gamehaqqs/internal/app"
	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	testutil "github.com/gamehaqqs/gamehaqqs/internal/database/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
)

func newTestRouter(t *testing.T, monitoring app.MonitoringConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "test", AccessTokenTTL: 15 * time.Minute})
	if err != nil {
		t.Fatalf("jwt service: %v", err)
	}

	svc, err := services.NewContainer(db, services.ContainerConfig{PasswordCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("services: %v", err)
	}

	router, err := NewRouter(db, jwtSvc, &app.Config{Monitoring: monitoring}, svc, nil)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	router := newTestRouter(t, app.MonitoringConfig{
		Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		Health:     app.HealthConfig{Enabled: true},
	})

	if w := serve(router, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health, got %d", w.Code)
	}

	if w := serve(router, http.MethodGet, "/api/leaderboard/all-time"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for public leaderboard, got %d", w.Code)
	}

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodPost, "/api/reviews"},
		{http.MethodGet, "/api/admin/achievements"},
	} {
		if w := serve(router, route.method, route.path); w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s %s without token, got %d", route.method, route.path, w.Code)
		}
	}

	w := serve(router, http.MethodGet, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "gamehaqqs_") {
		t.Fatalf("expected gamehaqqs metrics in exposition")
	}
}

func TestRouter_NotFoundFallback(t *testing.T) {
	router := newTestRouter(t, app.MonitoringConfig{})

	w := serve(router, http.MethodGet, "/api/does-not-exist")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND error code, got %s", w.Body.String())
	}
}

func TestRouter_MonitoringDisabled(t *testing.T) {
	router := newTestRouter(t, app.MonitoringConfig{})

	if w := serve(router, http.MethodGet, "/health"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for disabled health, got %d", w.Code)
	}
	if w := serve(router, http.MethodGet, "/metrics"); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when prometheus is disabled, got %d", w.Code)
	}
}

func TestNewRouter_RequiresDependencies(t *testing.T) {
	if _, err := NewRouter(nil, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for missing database")
	}
}
