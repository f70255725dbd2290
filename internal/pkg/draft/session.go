package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/geotag"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/imageprocessor"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/upload"
	"github.com/google/uuid"
)

// PhotoTimestampLayout is how capture times are written on photos.
const PhotoTimestampLayout = "1/2/2006, 3:04:05 PM"

var ErrFinalized = errors.New("record is finalized and can no longer be edited")

// State is the lifecycle position of the record held by a Session.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateDraftSaved
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "EMPTY"
	case StateEditing:
		return "EDITING"
	case StateDraftSaved:
		return "DRAFT_SAVED"
	case StateFinalized:
		return "FINALIZED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Gateway persists drafts and reports. syncclient.Client implements it.
type Gateway interface {
	SaveDraft(ctx context.Context, d *models.Draft) error
	SaveReport(ctx context.Context, r *models.Report) error
	DeleteDraft(ctx context.Context, id int64) error
}

// PhotoFile is one image picked for capture.
type PhotoFile struct {
	Name string
	Data []byte
}

// Session owns the one record currently being edited.
type Session struct {
	record    models.InspectionRecord
	state     State
	persisted bool

	clock   func() time.Time
	locator geotag.Locator
	ids     *models.IDGenerator

	// LocateTimeout bounds the location lookup of each photo.
	LocateTimeout time.Duration
	// KeepDraftOnFinalize leaves the originating draft in place after Finalize.
	KeepDraftOnFinalize bool
}

// NewSession starts a session on a fresh empty record. Nil arguments fall
// back to the wall clock, no locator and the process-wide id generator.
func NewSession(clock func() time.Time, locator geotag.Locator, ids *models.IDGenerator) *Session {
	if clock == nil {
		clock = time.Now
	}
	if ids == nil {
		ids = models.NewIDGenerator(clock)
	}
	s := &Session{
		clock:         clock,
		locator:       locator,
		ids:           ids,
		LocateTimeout: geotag.DefaultTimeout,
	}
	s.Reset()
	return s
}

// Reset discards the current record and starts an empty one.
func (s *Session) Reset() {
	s.record = models.InspectionRecord{ID: s.ids.Next()}
	s.record.Normalize()
	s.state = StateEmpty
	s.persisted = false
}

// LoadDraft replaces the current record with a stored draft and resumes editing it.
func (s *Session) LoadDraft(d models.Draft) {
	s.record = d.InspectionRecord.Clone()
	s.record.Normalize()
	if s.record.ID == 0 {
		s.record.ID = s.ids.Next()
	}
	s.state = StateEditing
	s.persisted = true
}

// Record returns a copy of the current record.
func (s *Session) Record() models.InspectionRecord {
	return s.record.Clone()
}

// State returns the lifecycle state of the current record.
func (s *Session) State() State {
	return s.state
}

func (s *Session) edit() error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	s.state = StateEditing
	return nil
}

// UpdateField sets one field, either top level ("district") or inside a
// group ("stateOfBuilding.abandoned"). Nothing else in the record changes.
func (s *Session) UpdateField(path string, value any) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	next := s.record
	if err := setField(&next, path, value); err != nil {
		return err
	}
	s.record = next
	return s.edit()
}

// AddPhoto appends one photo. The photo is kept even when no location can
// be found; its GPS field then holds the unavailable sentinel.
func (s *Session) AddPhoto(ctx context.Context, file PhotoFile) (models.Photo, error) {
	if s.state == StateFinalized {
		return models.Photo{}, ErrFinalized
	}
	mime, err := upload.ValidatePhoto(file.Name, file.Data)
	if err != nil {
		return models.Photo{}, err
	}

	// Reserve the slot before the lookup so list order follows selection order.
	idx := len(s.record.Photos)
	s.record.Photos = append(s.record.Photos, models.Photo{
		ID:        models.PhotoID(uuid.New().String()),
		Timestamp: s.clock().Format(PhotoTimestampLayout),
	})
	_ = s.edit()

	photo := &s.record.Photos[idx]
	photo.Data = imageprocessor.EncodeDataURI(mime, file.Data)
	photo.GPS = geotag.Tag(ctx, s.locator, file.Data, s.LocateTimeout)

	if s.record.GPSCoordinates == "" && geotag.IsValidGPS(photo.GPS) {
		s.record.GPSCoordinates = photo.GPS
	}
	return *photo, nil
}

// AddPhotos adds files one after another in the given order. Files that
// fail validation are skipped and reported together.
func (s *Session) AddPhotos(ctx context.Context, files []PhotoFile) ([]models.Photo, error) {
	var added []models.Photo
	var errs []error
	for _, f := range files {
		p, err := s.AddPhoto(ctx, f)
		if errors.Is(err, ErrFinalized) {
			return added, err
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		added = append(added, p)
	}
	return added, errors.Join(errs...)
}

// RemovePhoto drops the photo with the given id. Unknown ids are ignored.
func (s *Session) RemovePhoto(id models.PhotoID) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	for i, p := range s.record.Photos {
		if p.ID == id {
			s.record.Photos = append(s.record.Photos[:i:i], s.record.Photos[i+1:]...)
			return s.edit()
		}
	}
	return nil
}

// SetPhotoCaption sets the caption of one photo. Unknown ids are ignored.
func (s *Session) SetPhotoCaption(id models.PhotoID, text string) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	for i := range s.record.Photos {
		if s.record.Photos[i].ID == id {
			s.record.Photos[i].Title = text
			return s.edit()
		}
	}
	return nil
}

// SaveDraft stores the current record as a draft. Drafts may be incomplete.
func (s *Session) SaveDraft(ctx context.Context, gw Gateway) (models.Draft, error) {
	if s.state == StateFinalized {
		return models.Draft{}, ErrFinalized
	}
	d := models.Draft{
		InspectionRecord: s.record.Clone(),
		SavedAt:          models.NewTimestamp(s.clock()),
	}
	if err := gw.SaveDraft(ctx, &d); err != nil {
		return models.Draft{}, err
	}
	s.state = StateDraftSaved
	s.persisted = true
	return d, nil
}

// Finalize validates the record, stores it as a report under a new id and,
// unless KeepDraftOnFinalize is set, removes the draft it came from. Nothing
// is stored when validation fails.
func (s *Session) Finalize(ctx context.Context, gw Gateway) (models.Report, error) {
	if s.state == StateFinalized {
		return models.Report{}, ErrFinalized
	}
	if err := ValidateForExport(s.record); err != nil {
		return models.Report{}, err
	}

	r := models.Report{
		InspectionRecord: s.record.Clone(),
		GeneratedAt:      models.NewTimestamp(s.clock()),
	}
	r.ID = s.ids.Next()
	if err := gw.SaveReport(ctx, &r); err != nil {
		return models.Report{}, err
	}
	s.state = StateFinalized

	if s.persisted && !s.KeepDraftOnFinalize {
		if err := gw.DeleteDraft(ctx, s.record.ID); err != nil {
			return r, fmt.Errorf("report saved, removing draft failed: %w", err)
		}
	}
	return r, nil
}
