package repository

import (
	"context"
	"errors"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
)

var (
	// ErrMissingID is returned when a record without an id is upserted.
	ErrMissingID = errors.New("record must include an id")
	// ErrNotFound is returned by Get for an unknown id.
	ErrNotFound = errors.New("record not found")
)

// ListOptions controls list queries.
type ListOptions struct {
	// WithPhotos includes the photo payloads. Lists omit them by default
	// because they dominate the record size.
	WithPhotos bool
}

// Collection defines the operations every record collection supports
type Collection[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Upsert(ctx context.Context, item *T) error
	Delete(ctx context.Context, id int64) error
}

// DraftRepository defines the interface for draft storage
type DraftRepository interface {
	Collection[models.Draft]
}

// ReportRepository defines the interface for finalized report storage
type ReportRepository interface {
	Collection[models.Report]
}

// stamped is satisfied by *models.Draft and *models.Report.
type stamped[T any] interface {
	*T
	Record() *models.InspectionRecord
	Stamp() *models.Timestamp
}

// Repositories struct holds all repository instances
type Repositories struct {
	Drafts  DraftRepository
	Reports ReportRepository
}
