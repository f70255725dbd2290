package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/s3backup"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// ArchivedSetKey holds the ids of reports whose PDF is in the archive.
const ArchivedSetKey = "report_archive:done"

// PDFRenderer renders the archived form of a report. exporter.Renderer implements it.
type PDFRenderer interface {
	RenderPDF(report models.Report) ([]byte, error)
}

// Archiver keeps a PDF copy of every finalized report in object storage.
type Archiver struct {
	queue    *Queue
	client   *redis.Client
	reports  repository.ReportRepository
	renderer PDFRenderer
	archive  s3backup.Archive
}

// NewArchiver registers the archive job handlers on q.
func NewArchiver(q *Queue, reports repository.ReportRepository, renderer PDFRenderer, archive s3backup.Archive) *Archiver {
	a := &Archiver{
		queue:    q,
		client:   q.client,
		reports:  reports,
		renderer: renderer,
		archive:  archive,
	}
	q.Handle(JobTypeReportArchive, a.processArchiveJob)
	q.Handle(JobTypeReportArchiveDelete, a.processDeleteJob)
	return a
}

// ArchiveReport enqueues the upload of a report's PDF.
func (a *Archiver) ArchiveReport(ctx context.Context, reportID int64) error {
	_, err := a.queue.EnqueueJob(ctx, JobTypeReportArchive, ReportArchivePayload{ReportID: reportID}.ToMap())
	return err
}

// ForgetReport enqueues the removal of a deleted report's PDF.
func (a *Archiver) ForgetReport(ctx context.Context, reportID int64, generatedAt time.Time) error {
	payload := ReportArchivePayload{
		ReportID:  reportID,
		ObjectKey: s3backup.ReportKey(reportID, generatedAt),
	}
	_, err := a.queue.EnqueueJob(ctx, JobTypeReportArchiveDelete, payload.ToMap())
	return err
}

func (a *Archiver) processArchiveJob(ctx context.Context, job *Job) error {
	payload, err := ReportArchivePayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse archive job payload: %w", err)
	}

	report, err := a.reports.Get(ctx, payload.ReportID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warnf("[S3Backup] Report %d is gone, skipping archive", payload.ReportID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load report %d: %w", payload.ReportID, err)
	}

	pdf, err := a.renderer.RenderPDF(*report)
	if err != nil {
		return fmt.Errorf("failed to render report %d: %w", report.ID, err)
	}

	key := s3backup.ReportKey(report.ID, report.GeneratedAt.Time)
	if _, err := a.archive.Put(ctx, key, pdf, "application/pdf"); err != nil {
		return err
	}
	return a.client.SAdd(ctx, ArchivedSetKey, strconv.FormatInt(report.ID, 10)).Err()
}

func (a *Archiver) processDeleteJob(ctx context.Context, job *Job) error {
	payload, err := ReportArchivePayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse archive delete payload: %w", err)
	}
	if payload.ObjectKey == "" {
		return fmt.Errorf("archive delete job %s has no object key", job.ID)
	}
	if err := a.archive.Delete(ctx, payload.ObjectKey); err != nil {
		return err
	}
	return a.client.SRem(ctx, ArchivedSetKey, strconv.FormatInt(payload.ReportID, 10)).Err()
}

// Sweep enqueues every stored report that has no archive marker yet.
// It returns the number of jobs enqueued.
func (a *Archiver) Sweep(ctx context.Context) (int, error) {
	reports, err := a.reports.List(ctx, repository.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list reports: %w", err)
	}
	done, err := a.client.SMembers(ctx, ArchivedSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read archive markers: %w", err)
	}
	archived := make(map[string]struct{}, len(done))
	for _, id := range done {
		archived[id] = struct{}{}
	}

	enqueued := 0
	for _, r := range reports {
		if _, ok := archived[strconv.FormatInt(r.ID, 10)]; ok {
			continue
		}
		if err := a.ArchiveReport(ctx, r.ID); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	if enqueued > 0 {
		log.Infof("[S3Backup] Sweep enqueued %d reports for archiving", enqueued)
	}
	return enqueued, nil
}
