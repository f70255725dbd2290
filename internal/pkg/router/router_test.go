package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/Death-Raider13/CAPS-TEAM/app/repository"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/exporter"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/imageprocessor"
	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/session"
)

type recordingArchiver struct {
	archived  []int64
	forgotten []int64
}

func (a *recordingArchiver) ArchiveReport(ctx context.Context, id int64) error {
	a.archived = append(a.archived, id)
	return nil
}

func (a *recordingArchiver) ForgetReport(ctx context.Context, id int64, generatedAt time.Time) error {
	a.forgotten = append(a.forgotten, id)
	return nil
}

type testServer struct {
	app      *fiber.App
	repos    *repository.Repositories
	archiver *recordingArchiver
}

func newTestServer(t *testing.T, pdf bool, gate session.Gate) *testServer {
	t.Helper()
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("APP_ENV", "dev")

	renderer, err := exporter.New(exporter.Config{PDF: pdf})
	require.NoError(t, err)

	s := &testServer{
		app:      fiber.New(),
		repos:    repository.NewFileRepositories(afero.NewMemMapFs(), "/data/store.json"),
		archiver: &recordingArchiver{},
	}
	InstallRouter(s.app, Deps{
		Repos:    s.repos,
		Renderer: renderer,
		Archiver: s.archiver,
		Gate:     gate,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, cookies ...*http.Cookie) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func photo(t *testing.T) models.Photo {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return models.Photo{
		ID:        "p1",
		Data:      imageprocessor.EncodeDataURI("image/png", buf.Bytes()),
		GPS:       "Lat: 6.500000, Long: 3.300000",
		Timestamp: "6/1/2024, 10:00:00 AM",
	}
}

func errorOf(t *testing.T, body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Error
}

func TestDraftEndpoints(t *testing.T) {
	s := newTestServer(t, false, session.Gate{})

	resp, body := s.do(t, http.MethodPost, "/api/drafts", map[string]string{"reportNumber": "N-001"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Draft must include an id", errorOf(t, body))

	d := models.Draft{InspectionRecord: models.InspectionRecord{ID: 100, ReportNumber: "N-001", Photos: []models.Photo{photo(t)}}}
	resp, body = s.do(t, http.MethodPost, "/api/drafts", d)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	_, body = s.do(t, http.MethodGet, "/api/drafts", nil)
	var listed []models.Draft
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Photos)
	assert.False(t, listed[0].SavedAt.IsZero())

	_, body = s.do(t, http.MethodGet, "/api/drafts?photos=include", nil)
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed[0].Photos, 1)

	resp, body = s.do(t, http.MethodGet, "/api/drafts/100", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var full models.Draft
	require.NoError(t, json.Unmarshal(body, &full))
	assert.Equal(t, d.Photos[0], full.Photos[0])

	resp, body = s.do(t, http.MethodGet, "/api/drafts/101", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Draft not found", errorOf(t, body))

	resp, _ = s.do(t, http.MethodGet, "/api/drafts/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	d2 := models.Draft{InspectionRecord: models.InspectionRecord{ID: 200}}
	resp, body = s.do(t, http.MethodPost, "/api/drafts?respond=list", d2)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 2)

	resp, body = s.do(t, http.MethodDelete, "/api/drafts/999", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(body))

	resp, _ = s.do(t, http.MethodDelete, "/api/drafts/200", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, body = s.do(t, http.MethodGet, "/api/drafts", nil)
	require.NoError(t, json.Unmarshal(body, &listed))
	assert.Len(t, listed, 1)
}

func TestEmptyListsAreArrays(t *testing.T) {
	s := newTestServer(t, false, session.Gate{})
	for _, path := range []string{"/api/drafts", "/api/reports"} {
		resp, body := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, string(body))
	}
}

func TestFinalizeRejectsIncompleteDraft(t *testing.T) {
	s := newTestServer(t, false, session.Gate{})

	d := models.Draft{InspectionRecord: models.InspectionRecord{ID: 100, ReportNumber: "N-001"}}
	s.do(t, http.MethodPost, "/api/drafts", d)

	resp, body := s.do(t, http.MethodPost, "/api/drafts/100/finalize", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Please add at least 1 photo with GPS location before generating PDF", errorOf(t, body))

	_, body = s.do(t, http.MethodGet, "/api/reports", nil)
	assert.JSONEq(t, `[]`, string(body))
	_, err := s.repos.Drafts.Get(context.Background(), 100)
	assert.NoError(t, err)
	assert.Empty(t, s.archiver.archived)

	resp, _ = s.do(t, http.MethodPost, "/api/drafts/404/finalize", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFinalizeAndExport(t *testing.T) {
	s := newTestServer(t, false, session.Gate{})

	d := models.Draft{InspectionRecord: models.InspectionRecord{ID: 100, ReportNumber: "N-001", Photos: []models.Photo{photo(t)}}}
	s.do(t, http.MethodPost, "/api/drafts", d)

	resp, body := s.do(t, http.MethodPost, "/api/drafts/100/finalize", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var report models.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.NotEqual(t, int64(100), report.ID)
	assert.Equal(t, "N-001", report.ReportNumber)
	assert.Equal(t, []int64{report.ID}, s.archiver.archived)

	_, err := s.repos.Drafts.Get(context.Background(), 100)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	path := "/api/reports/" + jsonNumber(report.ID) + "/export"

	resp, body = s.do(t, http.MethodGet, path+"?format=html", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Lat: 6.500000, Long: 3.300000")
	assert.NotContains(t, string(body), "window.print")

	resp, body = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "window.print")

	resp, _ = s.do(t, http.MethodGet, path+"?format=pdf", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, path+"?format=docx", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/reports/1/export", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/reports/"+jsonNumber(report.ID), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []int64{report.ID}, s.archiver.forgotten)
}

func TestExportPDF(t *testing.T) {
	s := newTestServer(t, true, session.Gate{})

	r := models.Report{InspectionRecord: models.InspectionRecord{ID: 7, ReportNumber: "N-007", Photos: []models.Photo{photo(t)}}}
	resp, _ := s.do(t, http.MethodPost, "/api/reports", r)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []int64{7}, s.archiver.archived)

	resp, body := s.do(t, http.MethodGet, "/api/reports/7/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "CAP_Report_N-007.pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	noPhotos := models.Report{InspectionRecord: models.InspectionRecord{ID: 8, ReportNumber: "N-008"}}
	s.do(t, http.MethodPost, "/api/reports", noPhotos)
	resp, body = s.do(t, http.MethodGet, "/api/reports/8/export", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Please add at least 1 photo with GPS location before generating PDF", errorOf(t, body))
}

func TestLoginGate(t *testing.T) {
	s := newTestServer(t, false, session.Gate{Required: true, Username: "CAPS MONITORING TEAM", Password: "CAPS"})

	resp, _ := s.do(t, http.MethodGet, "/api/drafts", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"loginRequired":true,"loggedIn":false}`, string(body))

	resp, body = s.do(t, http.MethodPost, "/api/login", map[string]string{"username": "CAPS MONITORING TEAM", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", errorOf(t, body))

	resp, _ = s.do(t, http.MethodPost, "/api/login", map[string]string{"username": "CAPS MONITORING TEAM", "password": "CAPS"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	resp, _ = s.do(t, http.MethodGet, "/api/drafts", nil, cookies...)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false, session.Gate{})
	resp, body := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func jsonNumber(id int64) string {
	out, _ := json.Marshal(id)
	return string(out)
}
