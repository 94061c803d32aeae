package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRemoteStatusProgress(t *testing.T) {
	j := &Job{Status: StatusQueued}
	now := time.Now()

	first := j.ApplyRemoteStatus("processing", 40, 100, now)
	assert.False(t, first)
	assert.Equal(t, StatusProcessing, j.Status)
	assert.Equal(t, 40, j.ProcessedEmails)
	assert.Equal(t, 100, j.TotalEmails)
	assert.Equal(t, 40, j.ProgressPercentage)
	assert.Nil(t, j.CompletedAt)
}

func TestApplyRemoteStatusFirstCompletion(t *testing.T) {
	j := &Job{Status: StatusProcessing}
	now := time.Now()

	first := j.ApplyRemoteStatus("completed", 100, 100, now)
	assert.True(t, first)
	assert.Equal(t, StatusCompleted, j.Status)
	assert.Equal(t, 100, j.ProgressPercentage)
	require.NotNil(t, j.CompletedAt)
	assert.Equal(t, now, *j.CompletedAt)
}

func TestApplyRemoteStatusSecondPollIsNotFirst(t *testing.T) {
	j := &Job{Status: StatusProcessing}
	now := time.Now()

	require.True(t, j.ApplyRemoteStatus("completed", 100, 100, now))

	// 再轮询同一个完成状态不能再触发结算
	later := now.Add(time.Minute)
	assert.False(t, j.ApplyRemoteStatus("completed", 100, 100, later))
	assert.Equal(t, now, *j.CompletedAt)
}

func TestApplyRemoteStatusCompletedAtGuard(t *testing.T) {
	// 状态被远端改写过但 completed_at 已有值，同样不算首次完成
	done := time.Now().Add(-time.Hour)
	j := &Job{Status: StatusProcessing, CompletedAt: &done}

	assert.False(t, j.ApplyRemoteStatus("completed", 50, 50, time.Now()))
	assert.Equal(t, done, *j.CompletedAt)
}

func TestApplyRemoteStatusZeroTotal(t *testing.T) {
	j := &Job{Status: StatusQueued, ProgressPercentage: 10}

	j.ApplyRemoteStatus("processing", 0, 0, time.Now())
	// total为0时不除零，保持原进度
	assert.Equal(t, 10, j.ProgressPercentage)
}

func TestCancelQueuedJob(t *testing.T) {
	j := &Job{Status: StatusQueued}

	require.NoError(t, j.Cancel())
	assert.Equal(t, StatusCancelled, j.Status)

	patch := j.ExportPatch()
	require.NotNil(t, patch.Status)
	assert.Equal(t, StatusCancelled, *patch.Status)
}

func TestCancelTerminalJobFails(t *testing.T) {
	for _, status := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		j := &Job{Status: status}
		assert.ErrorIs(t, j.Cancel(), ErrJobTerminal, "status %s", status)
		assert.Equal(t, status, j.Status)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestMarkFailed(t *testing.T) {
	j := &Job{Status: StatusProcessing}
	j.MarkFailed("timed out waiting for validation engine")

	assert.Equal(t, StatusFailed, j.Status)
	assert.Equal(t, "timed out waiting for validation engine", j.ErrorMessage)

	patch := j.ExportPatch()
	require.NotNil(t, patch.Status)
	require.NotNil(t, patch.ErrorMessage)
}
