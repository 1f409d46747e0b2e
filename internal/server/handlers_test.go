package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
	"github.com/ngenohkevin/taskrunner/internal/runlog"
	"github.com/ngenohkevin/taskrunner/internal/runner"
)

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.LoadWithDefaults()
	cfg.LogDir = filepath.Join(t.TempDir(), "logs")

	cat := catalog.New()
	require.NoError(t, cat.Register(catalog.Task{
		Name:        "daily_backup",
		Description: "test backup",
		Run:         func(ctx context.Context) error { return nil },
	}))
	require.NoError(t, cat.Register(catalog.Task{
		Name:        "send_email",
		Description: "test email",
		Run:         func(ctx context.Context) error { return errors.New("boom") },
	}))

	rlog, err := runlog.Open(cfg.LogDir)
	require.NoError(t, err)
	t.Cleanup(func() { rlog.Close() })

	engine := runner.New(cat, rlog, cfg.MaxRetries)
	enabled := []string{"daily_backup", "send_email"}
	handlers := NewHandlers(cfg, engine, cat, enabled, rlog.Path())

	return New(cfg, handlers), cfg
}

func doRequest(t *testing.T, s *Server, cfg *config.Config, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheckNoAuth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListTasksMergesEnablement(t *testing.T) {
	s, cfg := newTestServer(t)

	w := doRequest(t, s, cfg, "GET", "/api/tasks")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tasks []struct {
			Name    string `json:"name"`
			Enabled bool   `json:"enabled"`
		} `json:"tasks"`
		Total   int      `json:"total"`
		Enabled []string `json:"enabled"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"daily_backup", "send_email"}, resp.Enabled)
	for _, task := range resp.Tasks {
		assert.True(t, task.Enabled)
	}
}

func TestRunSingleTask(t *testing.T) {
	s, cfg := newTestServer(t)

	w := doRequest(t, s, cfg, "POST", "/api/tasks/daily_backup/run")
	require.Equal(t, http.StatusOK, w.Code)

	var res runner.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.HadFailure)
	assert.NotEmpty(t, res.SessionID)
	require.Len(t, res.Results, 1)
	assert.True(t, res.Results[0].Success)
}

func TestRunUnknownTaskReturns404(t *testing.T) {
	s, cfg := newTestServer(t)

	w := doRequest(t, s, cfg, "POST", "/api/tasks/ghost/run")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "enabled")
}

func TestRunAllAggregatesFailure(t *testing.T) {
	s, cfg := newTestServer(t)

	w := doRequest(t, s, cfg, "POST", "/api/run")
	require.Equal(t, http.StatusOK, w.Code)

	var res runner.RunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.HadFailure)
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Success)
	assert.False(t, res.Results[1].Success)
	assert.Equal(t, 3, res.Results[1].Attempts)
}

func TestGetLogTailsRunLog(t *testing.T) {
	s, cfg := newTestServer(t)

	// Produce some log history first
	doRequest(t, s, cfg, "POST", "/api/tasks/daily_backup/run")

	w := doRequest(t, s, cfg, "GET", "/api/log?lines=5")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Lines)
	assert.Contains(t, resp.Lines[len(resp.Lines)-1], "End Session")
}
