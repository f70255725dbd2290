package jobqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/s3backup"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func (m *memArchive) Put(ctx context.Context, key string, body []byte, contentType string) (*s3backup.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return nil, errors.New("bucket unavailable")
	}
	m.objects[key] = body
	return &s3backup.UploadResult{ObjectKey: key, Size: int64(len(body)), ContentType: contentType}, nil
}

func (m *memArchive) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memArchive) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

type stubRenderer struct{}

func (stubRenderer) RenderPDF(report models.Report) ([]byte, error) {
	return []byte("%PDF-" + report.ReportNumber), nil
}

func setupArchiver(t *testing.T) (*Archiver, *memArchive, repository.ReportRepository) {
	t.Helper()
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	reports := repository.NewFileStore(afero.NewMemMapFs(), "store.json").Reports()
	archive := &memArchive{objects: map[string][]byte{}}
	return NewArchiver(NewQueue(client, 1), reports, stubRenderer{}, archive), archive, reports
}

// drain runs every pending job once.
func drain(t *testing.T, q *Queue) {
	t.Helper()
	ctx := context.Background()
	for {
		n, err := q.GetQueueSize(ctx)
		require.NoError(t, err)
		if n == 0 {
			return
		}
		job, err := q.dequeueJob(ctx)
		require.NoError(t, err)
		q.processJob(ctx, job)
	}
}

func TestArchiveAndForgetReport(t *testing.T) {
	a, archive, reports := setupArchiver(t)
	ctx := context.Background()
	generated := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	report := &models.Report{
		InspectionRecord: models.InspectionRecord{ID: 42, ReportNumber: "N-001"},
		GeneratedAt:      models.NewTimestamp(generated),
	}
	require.NoError(t, reports.Upsert(ctx, report))

	require.NoError(t, a.ArchiveReport(ctx, 42))
	drain(t, a.queue)

	key := "reports/2024/06/42.pdf"
	assert.Equal(t, []byte("%PDF-N-001"), archive.objects[key])
	isMember, err := a.client.SIsMember(ctx, ArchivedSetKey, "42").Result()
	require.NoError(t, err)
	assert.True(t, isMember)

	require.NoError(t, a.ForgetReport(ctx, 42, generated))
	drain(t, a.queue)

	assert.NotContains(t, archive.objects, key)
	isMember, err = a.client.SIsMember(ctx, ArchivedSetKey, "42").Result()
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestArchiveSkipsMissingReport(t *testing.T) {
	a, archive, _ := setupArchiver(t)
	ctx := context.Background()

	require.NoError(t, a.ArchiveReport(ctx, 404))
	drain(t, a.queue)

	assert.Empty(t, archive.objects)
	processing, err := a.queue.GetProcessingSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, processing)
}

func TestSweepEnqueuesUnarchivedReports(t *testing.T) {
	a, archive, reports := setupArchiver(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, reports.Upsert(ctx, &models.Report{InspectionRecord: models.InspectionRecord{ID: id, ReportNumber: "R"}}))
	}
	require.NoError(t, a.client.SAdd(ctx, ArchivedSetKey, "2").Err())

	n, err := a.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	drain(t, a.queue)
	assert.Len(t, archive.objects, 2)

	n, err = a.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArchiveFailureIsRetried(t *testing.T) {
	a, archive, reports := setupArchiver(t)
	ctx := context.Background()
	archive.failPut = true
	a.queue.RetryDelay = time.Hour

	require.NoError(t, reports.Upsert(ctx, &models.Report{InspectionRecord: models.InspectionRecord{ID: 5, ReportNumber: "R"}}))
	require.NoError(t, a.ArchiveReport(ctx, 5))

	job, err := a.queue.dequeueJob(ctx)
	require.NoError(t, err)
	a.queue.processJob(ctx, job)

	stored, err := a.queue.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRetrying, stored.Status)

	isMember, err := a.client.SIsMember(ctx, ArchivedSetKey, "5").Result()
	require.NoError(t, err)
	assert.False(t, isMember)
}
