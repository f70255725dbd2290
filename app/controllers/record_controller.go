package controllers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
)

// record is satisfied by *models.Draft and *models.Report.
type record[T any] interface {
	*T
	Record() *models.InspectionRecord
	Stamp() *models.Timestamp
}

// RecordController serves list/get/upsert/delete for one collection
type RecordController[T any, PT record[T]] struct {
	noun string // singular, lower case: "draft"
	repo repository.Collection[T]

	// AfterSave and AfterDelete run once the store accepted the write.
	AfterSave   func(ctx context.Context, item PT)
	AfterDelete func(ctx context.Context, prev PT)
}

// NewDraftController creates the controller for /api/drafts
func NewDraftController(repo repository.DraftRepository) *RecordController[models.Draft, *models.Draft] {
	return &RecordController[models.Draft, *models.Draft]{noun: "draft", repo: repo}
}

// NewReportController creates the controller for /api/reports
func NewReportController(repo repository.ReportRepository) *RecordController[models.Report, *models.Report] {
	return &RecordController[models.Report, *models.Report]{noun: "report", repo: repo}
}

func (rc *RecordController[T, PT]) title() string {
	return strings.ToUpper(rc.noun[:1]) + rc.noun[1:]
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// parseID reads the :id route parameter
func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (rc *RecordController[T, PT]) list(ctx context.Context, withPhotos bool) ([]T, error) {
	items, err := rc.repo.List(ctx, repository.ListOptions{WithPhotos: withPhotos})
	if items == nil {
		items = []T{}
	}
	return items, err
}

// HandleList returns the collection newest first. Photos are left out
// unless ?photos=include is given.
func (rc *RecordController[T, PT]) HandleList(c *fiber.Ctx) error {
	items, err := rc.list(c.UserContext(), c.Query("photos") == "include")
	if err != nil {
		log.Errorf("[Store] list %ss: %v", rc.noun, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load "+rc.noun+"s")
	}
	return c.JSON(items)
}

// HandleGet returns one full record including its photos
func (rc *RecordController[T, PT]) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid "+rc.noun+" id")
	}
	item, err := rc.repo.Get(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return jsonError(c, fiber.StatusNotFound, rc.title()+" not found")
	}
	if err != nil {
		log.Errorf("[Store] get %s %d: %v", rc.noun, id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load "+rc.noun)
	}
	return c.JSON(item)
}

// HandleUpsert stores the posted record, replacing any record with the same id.
// With ?respond=list the updated collection is returned instead of {success:true}.
func (rc *RecordController[T, PT]) HandleUpsert(c *fiber.Ctx) error {
	item := PT(new(T))
	if err := c.BodyParser(item); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid "+rc.noun+" body")
	}

	ctx := c.UserContext()
	if err := rc.repo.Upsert(ctx, item); err != nil {
		if errors.Is(err, repository.ErrMissingID) {
			return jsonError(c, fiber.StatusBadRequest, rc.title()+" must include an id")
		}
		log.Errorf("[Store] save %s %d: %v", rc.noun, item.Record().ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save "+rc.noun)
	}
	if rc.AfterSave != nil {
		rc.AfterSave(ctx, item)
	}

	if c.Query("respond") == "list" {
		items, err := rc.list(ctx, true)
		if err != nil {
			log.Errorf("[Store] list %ss after save: %v", rc.noun, err)
			return jsonError(c, fiber.StatusInternalServerError, "Failed to save "+rc.noun)
		}
		return c.JSON(items)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleDelete removes a record. Unknown ids succeed.
func (rc *RecordController[T, PT]) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid "+rc.noun+" id")
	}

	ctx := c.UserContext()
	var prev PT
	if rc.AfterDelete != nil {
		if found, err := rc.repo.Get(ctx, id); err == nil {
			prev = PT(found)
		}
	}

	if err := rc.repo.Delete(ctx, id); err != nil {
		log.Errorf("[Store] delete %s %d: %v", rc.noun, id, err)
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete "+rc.noun)
	}
	if rc.AfterDelete != nil && prev != nil {
		rc.AfterDelete(ctx, prev)
	}
	return c.JSON(fiber.Map{"success": true})
}
