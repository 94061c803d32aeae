package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerDefaults(t *testing.T) {
	s := NewServer("primary", "http://engine-a:3000", 5, 7)

	assert.True(t, s.IsActive)
	assert.True(t, s.IsHealthy) // 乐观默认，首轮巡检前视为健康
	assert.Equal(t, 5, s.Weight)
	assert.Equal(t, float64(100), s.SuccessRate)
	assert.Equal(t, uint64(7), s.CreatedBy)
}

func TestClampWeight(t *testing.T) {
	assert.Equal(t, MinWeight, ClampWeight(0))
	assert.Equal(t, MinWeight, ClampWeight(-3))
	assert.Equal(t, MaxWeight, ClampWeight(11))
	assert.Equal(t, MaxWeight, ClampWeight(100))
	assert.Equal(t, 1, ClampWeight(1))
	assert.Equal(t, 10, ClampWeight(10))
	assert.Equal(t, 6, ClampWeight(6))
}

func TestEligible(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	assert.True(t, s.Eligible())

	s.IsHealthy = false
	assert.False(t, s.Eligible())

	s.IsHealthy = true
	s.IsActive = false
	assert.False(t, s.Eligible())
}

func TestProbeSuccessCapsAtHundred(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	s.SuccessRate = 99.5
	now := time.Now()

	s.ApplyProbeSuccess(80*time.Millisecond, now)
	assert.Equal(t, float64(100), s.SuccessRate)
	s.ApplyProbeSuccess(80*time.Millisecond, now)
	assert.Equal(t, float64(100), s.SuccessRate)

	assert.True(t, s.IsHealthy)
	assert.Equal(t, float64(80), s.AvgResponseTime)
	require.NotNil(t, s.LastHealthCheck)
	assert.Equal(t, now, *s.LastHealthCheck)
}

func TestProbeFailureFloorsAtZero(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	s.SuccessRate = 7
	now := time.Now()

	s.ApplyProbeFailure(now)
	assert.False(t, s.IsHealthy)
	assert.Equal(t, float64(2), s.SuccessRate)

	s.ApplyProbeFailure(now)
	assert.Equal(t, float64(0), s.SuccessRate)
	s.ApplyProbeFailure(now)
	assert.Equal(t, float64(0), s.SuccessRate)
}

func TestProbePatchCarriesChanges(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	now := time.Now()
	s.ApplyProbeFailure(now)

	patch := s.ExportPatch()
	require.NotNil(t, patch.IsHealthy)
	assert.False(t, *patch.IsHealthy)
	require.NotNil(t, patch.SuccessRate)
	assert.Equal(t, float64(95), *patch.SuccessRate)
	require.NotNil(t, patch.LastHealthCheck)
	assert.Nil(t, patch.Weight) // 未动的字段不进patch
}

func TestRecordCallMetricsRollingMeans(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	s.SuccessRate = 100
	now := time.Now()

	s.RecordCallMetrics(true, 100*time.Millisecond, now)
	assert.Equal(t, int64(1), s.TotalRequests)
	assert.Equal(t, float64(100), s.SuccessRate)
	assert.Equal(t, float64(100), s.AvgResponseTime)

	s.RecordCallMetrics(false, 0, now)
	assert.Equal(t, int64(2), s.TotalRequests)
	assert.Equal(t, float64(50), s.SuccessRate)
	// 失败的调用不计入平均耗时
	assert.Equal(t, float64(100), s.AvgResponseTime)

	s.RecordCallMetrics(true, 400*time.Millisecond, now)
	assert.Equal(t, int64(3), s.TotalRequests)
	assert.InDelta(t, 66.67, s.SuccessRate, 0.01)
	assert.Equal(t, float64(200), s.AvgResponseTime)
}

func TestSetHealthyOverride(t *testing.T) {
	s := NewServer("a", "http://a", 5, 1)
	s.SetHealthy(false)

	assert.False(t, s.IsHealthy)
	patch := s.ExportPatch()
	require.NotNil(t, patch.IsHealthy)
	assert.False(t, *patch.IsHealthy)
}
