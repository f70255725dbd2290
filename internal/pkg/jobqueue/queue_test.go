package jobqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewQueue tests the queue constructor
func TestNewQueue(t *testing.T) {
	tests := []struct {
		name            string
		workers         int
		expectedWorkers int
	}{
		{"Valid worker count", 5, 5},
		{"Zero workers", 0, 2},
		{"Negative workers", -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := NewQueue(nil, tt.workers)

			assert.NotNil(t, queue)
			assert.Equal(t, tt.expectedWorkers, queue.workers)
			assert.Equal(t, tt.expectedWorkers, cap(queue.workerPool))
			assert.NotNil(t, queue.handlers)
			assert.False(t, queue.running)
		})
	}
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "caps:job:", JobKeyPrefix)
	assert.Equal(t, "caps:job_queue", JobQueueKey)
	assert.Equal(t, "caps:job_processing", JobProcessingKey)
	assert.Equal(t, "caps:job_stats", JobStatsKey)
	assert.Equal(t, 3, DefaultMaxRetries)
	assert.Equal(t, 24*time.Hour, JobTTL)
}

func TestProcessJobCompletes(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	ctx := context.Background()
	q := NewQueue(client, 1)

	var seen []string
	q.Handle(JobTypeReportArchive, func(ctx context.Context, job *Job) error {
		seen = append(seen, job.ID)
		return nil
	})

	job, err := q.EnqueueJob(ctx, JobTypeReportArchive, ReportArchivePayload{ReportID: 7}.ToMap())
	require.NoError(t, err)

	size, err := q.GetQueueSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	got, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	q.processJob(ctx, got)
	assert.Equal(t, []string{job.ID}, seen)

	_, err = q.GetJob(ctx, job.ID)
	assert.Error(t, err, "completed jobs are removed")

	processing, err := q.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)

	stats, err := q.GetJobStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[JobStatusCompleted])
}

func TestProcessJobRetries(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	ctx := context.Background()
	q := NewQueue(client, 1)
	q.RetryDelay = 10 * time.Millisecond
	q.Handle(JobTypeReportArchive, func(ctx context.Context, job *Job) error {
		return errors.New("bucket unavailable")
	})

	job, err := q.EnqueueJob(ctx, JobTypeReportArchive, ReportArchivePayload{ReportID: 7}.ToMap())
	require.NoError(t, err)
	got, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	q.processJob(ctx, got)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, "bucket unavailable", stored.ErrorMsg)

	assert.Eventually(t, func() bool {
		n, err := q.GetQueueSize(ctx)
		return err == nil && n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestProcessJobUnknownTypeFails(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	ctx := context.Background()
	q := NewQueue(client, 1)

	job, err := q.EnqueueJob(ctx, JobType("mystery"), nil)
	require.NoError(t, err)
	got, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	got.MaxRetries = 0
	q.processJob(ctx, got)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, stored.Status)
	assert.Contains(t, stored.ErrorMsg, "unknown job type")
}

func TestRecoverStuck(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	ctx := context.Background()
	q := NewQueue(client, 1)

	job, err := q.EnqueueJob(ctx, JobTypeReportArchive, nil)
	require.NoError(t, err)
	got, err := q.dequeueJob(ctx)
	require.NoError(t, err)
	got.MarkAsProcessing()
	q.updateJob(ctx, got)

	q.recoverStuck(ctx, time.Minute, time.Now())
	n, _ := q.GetQueueSize(ctx)
	assert.Zero(t, n, "fresh jobs stay in processing")

	q.recoverStuck(ctx, time.Minute, time.Now().Add(time.Hour))
	n, _ = q.GetQueueSize(ctx)
	assert.Equal(t, int64(1), n)

	stored, err := q.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusPending, stored.Status)
}

func TestJobStateTransitions(t *testing.T) {
	job := &Job{MaxRetries: 2}
	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.True(t, job.IsRetryable())
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.False(t, job.IsRetryable())

	job.MarkAsFailed("boom again")
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
}

func TestReportArchivePayloadMap(t *testing.T) {
	p := ReportArchivePayload{ReportID: 1717000000123, ObjectKey: "reports/2024/05/1717000000123.pdf"}
	got, err := ReportArchivePayloadFromMap(p.ToMap())
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	got, err = ReportArchivePayloadFromMap(ReportArchivePayload{ReportID: 9}.ToMap())
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ReportID)
	assert.Empty(t, got.ObjectKey)
}
