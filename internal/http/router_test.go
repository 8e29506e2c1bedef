package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-tasks-api/internal/auth"
	"github.com/redmonkez12/go-tasks-api/internal/config"
	"github.com/redmonkez12/go-tasks-api/internal/database/dbtest"
	"github.com/redmonkez12/go-tasks-api/internal/health"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
	"github.com/redmonkez12/go-tasks-api/internal/task"
	"github.com/redmonkez12/go-tasks-api/internal/user"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db := dbtest.New(t)
	logger := logging.Discard()

	cfg := &config.Config{Server: config.ServerConfig{Env: "test", TrustedOrigins: []string{"*"}}}

	tokens, err := auth.NewTokensFromSecrets(config.StrategyJWT,
		[]byte("router-access-secret-0123456789ab"),
		[]byte("router-refresh-secret-0123456789"),
		30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	hasher := auth.NewHasher(auth.HasherParams{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	authService, err := auth.NewService(user.NewRepository(db), hasher, tokens, logger)
	require.NoError(t, err)

	return NewRouter(cfg, Handlers{
		Auth:           auth.NewHandler(authService),
		AuthMiddleware: auth.NewMiddleware(tokens),
		Tasks:          task.NewHandler(task.NewService(task.NewRepository(db))),
		Health:         health.NewHandler(health.NewChecker(db.DB, nil, time.Second)),
	}, logger)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, h http.Handler, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestRouter_EndToEnd(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodPost, "/api/auth/register", "", `{"email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, code)

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tokens))

	code, env = call(t, h, http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization token required", env.Message)

	code, _ = call(t, h, http.MethodGet, "/api/tasks", tokens.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = call(t, h, http.MethodPost, "/api/tasks", tokens.AccessToken, `{"title":"From router"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Task created successfully", env.Message)

	code, env = call(t, h, http.MethodGet, "/api/tasks", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "From router")

	code, env = call(t, h, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"`+tokens.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, code)

	var refreshed struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))

	code, _ = call(t, h, http.MethodGet, "/api/tasks", refreshed.AccessToken, "")
	assert.Equal(t, http.StatusOK, code)

	// another user cannot see alice's tasks
	_, env = call(t, h, http.MethodPost, "/api/auth/register", "", `{"email":"bob@example.com","password":"secret1"}`)
	var bob struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bob))

	code, env = call(t, h, http.MethodGet, "/api/tasks", bob.AccessToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "From router")
}

func TestRouter_HealthAndFallbacks(t *testing.T) {
	h := newTestRouter(t)

	code, env := call(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Server is running", env.Message)

	code, _ = call(t, h, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = call(t, h, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)

	code, _ = call(t, h, http.MethodPut, "/api/auth/login", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recoverer(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
}
