package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"dtindex/internal/infrastructure"
	"dtindex/internal/shared/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
})

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{name: "generates an id", incoming: ""},
		{name: "keeps the incoming id", incoming: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen, traceID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
				traceID = infrastructure.GetTraceID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
			assert.Equal(t, seen, traceID)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, seen)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	h := RequestID(Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var p Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), p.Trace)
	assert.True(t, handler.ContainsMessage("panic recovered"))
}

func TestRateLimiter(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	rl := NewRateLimiter(1, 2, logger)
	h := rl.Handler(okHandler)

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.True(t, handler.ContainsMessage("rate limit exceeded"))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	var hasDeadline bool
	h := Timeout(10*time.Millisecond, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
		<-r.Context().Done()
		assert.ErrorIs(t, r.Context().Err(), context.DeadlineExceeded)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
	assert.True(t, handler.ContainsMessage("request exceeded its deadline"))
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:8080"}})(okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:8080", wantStatus: http.StatusOK, wantOrigin: "http://localhost:8080"},
		{name: "other origin", method: http.MethodGet, origin: "http://evil.example", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:8080", wantStatus: http.StatusNoContent, wantOrigin: "http://localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/report", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "img-src 'self' data:")
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestOTelMiddlewareRecordsRoute(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := infrastructure.CreateReportMetrics(mp.Meter(infrastructure.MeterName))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	m := NewOTelMiddleware(tracenoop.NewTracerProvider().Tracer("test"), metrics, logger)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/entities/{entity}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/entities/000001", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var found bool
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "http_requests_total" {
				continue
			}
			sum := metric.Data.(metricdata.Sum[int64])
			require.Len(t, sum.DataPoints, 1)
			route, _ := sum.DataPoints[0].Attributes.Value("route")
			status, _ := sum.DataPoints[0].Attributes.Value("status_code")
			assert.Equal(t, "/api/entities/{entity}", route.AsString())
			assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
			found = true
		}
	}
	assert.True(t, found, "http_requests_total not recorded")
}

func TestProblemFromStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantType  string
		wantTitle string
	}{
		{http.StatusTooManyRequests, "/errors/rate-limit-exceeded", "Too Many Requests"},
		{http.StatusInternalServerError, "/errors/internal-server-error", "Internal Server Error"},
		{http.StatusTeapot, "/errors/unknown", "I'm a teapot"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := ProblemFromStatus(tt.status, "detail", "trace")
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, tt.wantTitle, p.Title)
			assert.Equal(t, tt.status, p.Status)
			assert.Equal(t, "trace", p.Trace)
		})
	}
}
