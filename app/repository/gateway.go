package repository

import (
	"context"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
)

// SaveDraft upserts a draft. With these three methods Repositories can back
// a draft session directly on the server side.
func (r *Repositories) SaveDraft(ctx context.Context, d *models.Draft) error {
	return r.Drafts.Upsert(ctx, d)
}

// SaveReport upserts a finalized report
func (r *Repositories) SaveReport(ctx context.Context, rep *models.Report) error {
	return r.Reports.Upsert(ctx, rep)
}

// DeleteDraft removes a draft by id
func (r *Repositories) DeleteDraft(ctx context.Context, id int64) error {
	return r.Drafts.Delete(ctx, id)
}
