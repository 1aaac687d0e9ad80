package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gamehaqqs/gamehaqqs/internal/api"
	"github.com/gamehaqqs/gamehaqqs/internal/app"
	iauth "github.com/gamehaqqs/gamehaqqs/internal/auth"
	sharedtestutil "github.com/gamehaqqs/gamehaqqs/internal/database/testutil"
	"github.com/gamehaqqs/gamehaqqs/internal/models"
	"github.com/gamehaqqs/gamehaqqs/internal/notifications"
	"github.com/gamehaqqs/gamehaqqs/internal/services"
	"github.com/gamehaqqs/gamehaqqs/pkg/response"
)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Router   *gin.Engine
	JWT      *iauth.JWTService
	Hub      *notifications.Hub
	Services *services.Container
}

// NewEnv provisions a fresh handler test environment with migrations and the seed catalog applied.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithSeedData())

	cfg := &app.Config{
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{
				Secret: "test-suite-super-secret-key-32-bytes!!",
				Issuer: "test-suite",
				TTL:    time.Hour,
			},
			Password: app.PasswordSettings{BcryptCost: bcrypt.MinCost},
		},
		Leaderboard: app.LeaderboardConfig{Size: 100},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	require.NoError(t, err)

	hub := notifications.NewHub()
	svc, err := services.NewContainer(db, services.ContainerConfig{
		Publisher:       hub,
		LeaderboardSize: cfg.Leaderboard.Size,
		PasswordCost:    cfg.Auth.PasswordCost(),
	})
	require.NoError(t, err)

	router, err := api.NewRouter(db, jwtSvc, cfg, svc, hub)
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Router:   router,
		JWT:      jwtSvc,
		Hub:      hub,
		Services: svc,
	}
}

// CreateUser inserts an active account with the given role and XP and returns it with a valid token.
func (e *Env) CreateUser(role string, xp int64) (*models.User, string) {
	e.T.Helper()

	username := "player-" + uuid.NewString()[:8]
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Role:         role,
		IsActive:     true,
		XP:           xp,
		Level:        models.LevelForXP(xp),
	}
	require.NoError(e.T, e.DB.Create(user).Error)

	return user, e.Token(user)
}

// Token issues an access token for user.
func (e *Env) Token(user *models.User) string {
	e.T.Helper()

	token, err := e.JWT.GenerateAccessToken(iauth.TokenInput{UserID: user.ID, Username: user.Username, Role: user.Role})
	require.NoError(e.T, err)
	return token
}

// SessionPayload mirrors the register/login response payload.
type SessionPayload struct {
	AccessToken string               `json:"access_token"`
	TokenType   string               `json:"token_type"`
	ExpiresIn   int                  `json:"expires_in"`
	User        models.User          `json:"user"`
	Unlocked    []models.Achievement `json:"unlocked"`
}

// Register creates an account through the API and returns the issued session.
func (e *Env) Register(username, password string) SessionPayload {
	e.T.Helper()

	w := e.Request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	}, "")
	require.Equal(e.T, http.StatusCreated, w.Code, w.Body.String())

	resp := DecodeResponse(e.T, w)
	require.True(e.T, resp.Success, w.Body.String())

	var session SessionPayload
	DecodeInto(e.T, resp.Data, &session)
	require.NotEmpty(e.T, session.AccessToken)
	return session
}

// APIResponse represents the canonical API envelope returned by handlers.
type APIResponse struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
	Meta    *response.Meta      `json:"meta"`
}

// DecodeResponse parses the standard API response object from a recorder.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeInto unmarshals the data payload into the provided destination.
func DecodeInto[T any](t *testing.T, raw json.RawMessage, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(raw, dest))
}

// Request executes an HTTP request against the test router, applying JSON encoding and auth headers automatically.
func (e *Env) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.T.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}
