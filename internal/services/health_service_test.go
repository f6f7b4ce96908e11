package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtindex/internal/shared/testutil"
)

type stubReadiness struct {
	ok      bool
	failure *LoadFailure
}

func (s stubReadiness) Ready() (bool, *LoadFailure) { return s.ok, s.failure }

func TestHealthServiceReadiness(t *testing.T) {
	failure := &LoadFailure{Message: "找不到数据文件：data.xlsx", Path: "data.xlsx"}

	tests := []struct {
		name        string
		dataset     DatasetReadiness
		wantStatus  string
		wantDataset string
	}{
		{name: "dataset served", dataset: stubReadiness{ok: true}, wantStatus: "ready", wantDataset: "ready"},
		{name: "dataset hard stopped", dataset: stubReadiness{failure: failure}, wantStatus: "not_ready", wantDataset: "failed"},
		{name: "dataset still loading", dataset: stubReadiness{}, wantStatus: "not_ready", wantDataset: "loading"},
		{name: "no dataset service", dataset: nil, wantStatus: "not_ready", wantDataset: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", tt.dataset, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantStatus == "ready", status.Ready())
			assert.Equal(t, "1.0.0", status.Version)

			data, ok := status.Services["dataset"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantDataset, data.Status)
		})
	}
}

func TestHealthServiceFailureDetails(t *testing.T) {
	failure := &LoadFailure{Message: "数据缺少必要的列：年份", MissingColumns: []string{"年份"}}
	logger, handler := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", stubReadiness{failure: failure}, logger)

	status := hs.ReadinessCheck(context.Background())
	data := status.Services["dataset"].(ServiceHealth)
	assert.Equal(t, failure.Message, data.Message)
	assert.Same(t, failure, data.Failure)
	assert.True(t, handler.ContainsMessage("ReadinessCheck: dataset not ready"))
}

func TestHealthServiceLivenessAndVersion(t *testing.T) {
	hs := NewHealthService("1.2.3", "2026-01-01T00:00:00Z", stubReadiness{ok: true}, nil)

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, "1.2.3", version["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", version["build_time"])
}
