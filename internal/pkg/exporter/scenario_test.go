package exporter_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/draft"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/geotag"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGateway records how often the store is touched.
type countingGateway struct {
	*repository.Repositories
	drafts, reports, deletes int
}

func (g *countingGateway) SaveDraft(ctx context.Context, d *models.Draft) error {
	g.drafts++
	return g.Repositories.SaveDraft(ctx, d)
}

func (g *countingGateway) SaveReport(ctx context.Context, r *models.Report) error {
	g.reports++
	return g.Repositories.SaveReport(ctx, r)
}

func (g *countingGateway) DeleteDraft(ctx context.Context, id int64) error {
	g.deletes++
	return g.Repositories.DeleteDraft(ctx, id)
}

func TestFinalizeAndExportScenario(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Repositories: repository.NewFileRepositories(afero.NewMemMapFs(), "/data/store.json")}
	locator := geotag.StaticLocator{Position: geotag.Position{Latitude: 6.5, Longitude: 3.3}}
	clock := func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) }

	s := draft.NewSession(clock, locator, nil)
	require.NoError(t, s.UpdateField("reportNumber", "N-001"))

	_, err := s.Finalize(ctx, gw)
	require.ErrorIs(t, err, draft.ErrNoPhotos)
	assert.Zero(t, gw.drafts+gw.reports+gw.deletes)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	photo, err := s.AddPhoto(ctx, draft.PhotoFile{Name: "site.png", Data: buf.Bytes()})
	require.NoError(t, err)
	assert.Equal(t, "Lat: 6.500000, Long: 3.300000", photo.GPS)

	report, err := s.Finalize(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.reports)
	assert.Zero(t, gw.deletes)
	assert.Equal(t, draft.StateFinalized, s.State())

	listed, err := gw.Reports.List(ctx, repository.ListOptions{WithPhotos: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, report.ID, listed[0].ID)
	assert.Equal(t, "N-001", listed[0].ReportNumber)

	r, err := exporter.New(exporter.Config{})
	require.NoError(t, err)
	doc, err := r.Render(listed[0])
	require.NoError(t, err)
	assert.Contains(t, string(doc.HTML), "Lat: 6.500000, Long: 3.300000")
}
