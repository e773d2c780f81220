package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/config"
	"luna.app/internal/testutil"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Log.Level = "error"

	container, err := NewDependencyContainerWithDB(cfg, testutil.NewDB(t))
	require.NoError(t, err)

	app, err := NewApplicationWithDependencies(cfg, container)
	require.NoError(t, err)
	return app
}

func TestApplication_Wiring(t *testing.T) {
	app := newTestApplication(t)

	p := app.Ports()
	require.NotNil(t, p)
	assert.NotNil(t, p.Store)
	assert.NotNil(t, p.UserDirectory)
	assert.NotNil(t, p.PushGateway)
	assert.NotNil(t, p.EmailQueue)
	assert.Equal(t, 8080, app.Config().Server.Port)
}

func TestApplication_HealthReportsUnconfiguredPush(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	app.GetRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestApplication_RegistrationQueuesWelcomeEmail(t *testing.T) {
	app := newTestApplication(t)

	payload, err := json.Marshal(map[string]interface{}{
		"name":  "Asha",
		"email": "asha@example.com",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	app.GetRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	pending, err := app.Ports().EmailQueue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.GetRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestApplication_ShutdownWithoutStart(t *testing.T) {
	app := newTestApplication(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, app.Shutdown(ctx))
}
