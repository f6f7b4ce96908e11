package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtindex/internal/config"
	apierrors "dtindex/internal/errors"
	"dtindex/internal/infrastructure"
	"dtindex/internal/shared/testutil"
)

func testConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Path = path
	cfg.Security.RateLimit.Enabled = false
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.OTel.Environment = "test"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, providers *infrastructure.OTelProviders) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(cfg, logger, providers)
	require.NoError(t, err)
	return a
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestApplicationServesDataset(t *testing.T) {
	path := testutil.WriteXLSX(t, t.TempDir(), "data.xlsx", testutil.SampleHeader, testutil.SampleRows())
	a := newTestApp(t, testConfig(t, path), nil)

	ok, failure := a.Services.Reports.Ready()
	require.True(t, ok)
	require.Nil(t, failure)

	tests := []struct {
		path        string
		wantStatus  int
		contentType string
	}{
		{path: "/", wantStatus: http.StatusOK, contentType: "text/html; charset=utf-8"},
		{path: "/api/summary", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/report?entity=600000&year=2020", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/entities/000001", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/entities/999999", wantStatus: http.StatusNotFound, contentType: "application/problem+json"},
		{path: "/api/export/000001", wantStatus: http.StatusOK, contentType: "text/csv; charset=utf-8"},
		{path: "/api/charts/trend.png", wantStatus: http.StatusOK, contentType: "image/png"},
		{path: "/api/health", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/health/ready", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/version", wantStatus: http.StatusOK, contentType: "application/json"},
		{path: "/api/nope", wantStatus: http.StatusNotFound, contentType: "application/problem+json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, a.Router, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), tt.contentType),
				"content type %q", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplicationHardStop(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.xlsx")
	a := newTestApp(t, testConfig(t, missing), nil)

	ok, failure := a.Services.Reports.Ready()
	require.False(t, ok)
	require.NotNil(t, failure)

	rec := get(t, a.Router, "/api/summary")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Equal(t, fmt.Sprintf("找不到数据文件：%s", missing), problem["detail"])
	assert.NotEmpty(t, problem["working_dir"])

	rec = get(t, a.Router, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = get(t, a.Router, "/api/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, a.Router, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "数据加载失败")
}

func TestApplicationMetricsEndpoint(t *testing.T) {
	path := testutil.WriteCSV(t, t.TempDir(), "data.csv", testutil.SampleHeader, testutil.SampleRows())
	logger, _ := testutil.NewTestLogger(t)

	t.Run("disabled", func(t *testing.T) {
		a := newTestApp(t, testConfig(t, path), nil)
		assert.Equal(t, http.StatusNotFound, get(t, a.Router, "/metrics").Code)
	})

	t.Run("prometheus", func(t *testing.T) {
		cfg := testConfig(t, path)
		providers, err := infrastructure.InitializeOTel(cfg.OTel, logger)
		require.NoError(t, err)
		t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

		a := newTestApp(t, cfg, providers)
		require.Equal(t, http.StatusOK, get(t, a.Router, "/api/summary").Code)

		rec := get(t, a.Router, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "http_requests_total")
		assert.Contains(t, body, "report_requests_total")
		assert.Contains(t, body, "dataset_rows")
	})
}

func TestApplicationServeAndStop(t *testing.T) {
	path := testutil.WriteCSV(t, t.TempDir(), "data.csv", testutil.SampleHeader, testutil.SampleRows())
	a := newTestApp(t, testConfig(t, path), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health/live")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "alive")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewApplicationInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  output: syslog\n"), 0644))

	app, err := NewApplication(cfgPath)
	require.Error(t, err)
	assert.Nil(t, app)

	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
	assert.Equal(t, cfgPath, appErr.Context["file"])
	assert.Contains(t, err.Error(), "invalid logging output")
}

func TestIsDevelopmentMode(t *testing.T) {
	a := &Application{Config: config.Default()}
	assert.True(t, a.isDevelopmentMode())

	a.Config.OTel.Environment = "production"
	assert.False(t, a.isDevelopmentMode())
}
