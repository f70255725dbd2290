package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormCollection implements Collection on a relational table
type gormCollection[T any, PT stamped[T]] struct {
	db          *gorm.DB
	stampColumn string
}

// NewDraftRepository creates a new draft repository backed by the drafts table
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &gormCollection[models.Draft, *models.Draft]{db: db, stampColumn: "saved_at"}
}

// NewReportRepository creates a new report repository backed by the reports table
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &gormCollection[models.Report, *models.Report]{db: db, stampColumn: "generated_at"}
}

// NewRepositories creates the relational repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Drafts:  NewDraftRepository(db),
		Reports: NewReportRepository(db),
	}
}

// List retrieves all records, newest first
func (r *gormCollection[T, PT]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	var items []T
	q := r.db.WithContext(ctx)
	if !opts.WithPhotos {
		q = q.Omit("photos")
	}
	err := q.Order(r.stampColumn + " DESC").Order("id DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.stampColumn, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get retrieves one full record by its id
func (r *gormCollection[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts the record or replaces the row with the same id
func (r *gormCollection[T, PT]) Upsert(ctx context.Context, item *T) error {
	if err := prepare[T, PT](item); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(item).Error
}

// Delete removes the record with the given id. Deleting an absent id is not an error.
func (r *gormCollection[T, PT]) Delete(ctx context.Context, id int64) error {
	var item T
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&item).Error
}
