package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/cache"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/draft"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
)

// ReportArchiver keeps the object-storage copy of reports in step with the store.
// jobqueue.Archiver implements it.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, reportID int64) error
	ForgetReport(ctx context.Context, reportID int64, generatedAt time.Time) error
}

// ExportController finalizes drafts and exports reports
type ExportController struct {
	repos    *repository.Repositories
	renderer *exporter.Renderer
	ids      *models.IDGenerator
	archiver ReportArchiver

	// KeepDraftOnFinalize leaves the draft in place after finalizing it.
	KeepDraftOnFinalize bool
}

// NewExportController creates the controller. archiver may be nil.
func NewExportController(repos *repository.Repositories, renderer *exporter.Renderer, archiver ReportArchiver) *ExportController {
	return &ExportController{
		repos:    repos,
		renderer: renderer,
		ids:      models.NewIDGenerator(nil),
		archiver: archiver,
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, draft.ErrNoPhotos) || errors.Is(err, draft.ErrMissingReportNumber)
}

// Archive enqueues the archive upload of a stored report
func (ec *ExportController) Archive(ctx context.Context, report *models.Report) {
	if ec.archiver == nil {
		return
	}
	if err := ec.archiver.ArchiveReport(ctx, report.ID); err != nil {
		log.Warnf("[JobQueue] enqueue archive of report %d: %v", report.ID, err)
	}
}

// Forget enqueues the removal of a deleted report's archive copy
func (ec *ExportController) Forget(ctx context.Context, report *models.Report) {
	if ec.archiver == nil {
		return
	}
	if err := ec.archiver.ForgetReport(ctx, report.ID, report.GeneratedAt.Time); err != nil {
		log.Warnf("[JobQueue] enqueue archive removal of report %d: %v", report.ID, err)
	}
}

// HandleFinalize turns a stored draft into a report under a new id.
// Nothing is written when the draft fails export validation.
func (ec *ExportController) HandleFinalize(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid draft id")
	}

	ctx := c.UserContext()
	d, err := ec.repos.Drafts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "Draft not found")
	}
	if err != nil {
		log.Errorf("[Store] get draft %d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load draft")
	}

	s := draft.NewSession(nil, nil, ec.ids)
	s.KeepDraftOnFinalize = ec.KeepDraftOnFinalize
	s.LoadDraft(*d)

	report, err := s.Finalize(ctx, ec.repos)
	switch {
	case isValidationError(err):
		return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case err != nil && report.ID == 0:
		log.Errorf("[Store] finalize draft %d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save report")
	case err != nil:
		// The report is stored; only the draft cleanup failed.
		log.Warnf("[Store] finalize draft %d: %v", id, err)
	}

	ec.Archive(ctx, &report)
	return c.Status(fiber.StatusCreated).JSON(report)
}

// HandleExport renders a stored report. ?format= picks pdf, print or html;
// the default tries the PDF and falls back to the print page.
func (ec *ExportController) HandleExport(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid report id")
	}
	format, err := exporter.ParseFormat(c.Query("format"))
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := ec.repos.Reports.Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, "Report not found")
	}
	if err != nil {
		log.Errorf("[Store] get report %d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load report")
	}

	delivery, err := ec.renderer.Deliver(*report, format, c.Get(fiber.HeaderUserAgent))
	switch {
	case isValidationError(err):
		return jsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, exporter.ErrPDFUnavailable):
		return jsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		log.Errorf("[Export] report %d: %v", id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to export report")
	}

	if cache.Available() {
		if err := cache.Incr("caps:exports:" + delivery.Tier.String()); err != nil {
			log.Debugf("[Export] counter: %v", err)
		}
	}

	c.Set(fiber.HeaderContentType, delivery.ContentType)
	if delivery.Attachment() {
		c.Attachment(delivery.Filename)
	}
	return c.Send(delivery.Body)
}
