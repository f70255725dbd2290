package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/afero"
)

// DefaultBaseURL is the gateway address used when none is configured.
const DefaultBaseURL = "http://localhost:4000/api"

// ErrNotFound is returned by the fetch calls for an unknown id.
var ErrNotFound = errors.New("record not found on server")

// Client talks to the sync gateway and keeps a device-local copy of both
// collections so the form keeps working while the server is unreachable.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *localCache
}

// Snapshot is the result of LoadAll
type Snapshot struct {
	Drafts  []models.Draft
	Reports []models.Report
	// Offline is set when the lists came from the local cache.
	Offline bool
}

// New creates a client. An empty baseURL means DefaultBaseURL; dir is the
// cache directory on fs.
func New(baseURL string, fs afero.Fs, dir string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		cache: &localCache{fs: fs, dir: dir},
	}
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.Status)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// do sends a JSON request and decodes a JSON response into result when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &apiError{Status: resp.StatusCode, Message: e.Error}
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// LoadAll fetches both lists. On success the local cache is refreshed; on
// any failure the cached lists are returned instead and no error is reported.
func (c *Client) LoadAll(ctx context.Context) Snapshot {
	var snap Snapshot
	errD := c.do(ctx, http.MethodGet, "/drafts", nil, &snap.Drafts)
	errR := c.do(ctx, http.MethodGet, "/reports", nil, &snap.Reports)
	if err := errors.Join(errD, errR); err != nil {
		log.Warnf("[SyncClient] loading from server failed, using local copy: %v", err)
		return c.cached()
	}

	if snap.Drafts == nil {
		snap.Drafts = []models.Draft{}
	}
	if snap.Reports == nil {
		snap.Reports = []models.Report{}
	}
	if err := c.cache.writeDrafts(snap.Drafts); err != nil {
		log.Warnf("[SyncClient] caching drafts failed: %v", err)
	}
	if err := c.cache.writeReports(snap.Reports); err != nil {
		log.Warnf("[SyncClient] caching reports failed: %v", err)
	}
	return snap
}

func (c *Client) cached() Snapshot {
	snap := Snapshot{Offline: true}
	var err error
	if snap.Drafts, err = c.cache.readDrafts(); err != nil {
		log.Warnf("[SyncClient] reading cached drafts failed: %v", err)
		snap.Drafts = []models.Draft{}
	}
	if snap.Reports, err = c.cache.readReports(); err != nil {
		log.Warnf("[SyncClient] reading cached reports failed: %v", err)
		snap.Reports = []models.Report{}
	}
	return snap
}

// SaveDraft updates the local copy first and then pushes the draft. A push
// failure is logged; the local copy stays as written.
func (c *Client) SaveDraft(ctx context.Context, d *models.Draft) error {
	if d.ID == 0 {
		return errors.New("draft must include an id")
	}
	if d.SavedAt.IsZero() {
		d.SavedAt = models.Now()
	}
	if err := c.cache.upsertDraft(*d); err != nil {
		return fmt.Errorf("cache draft %d: %w", d.ID, err)
	}
	if err := c.do(ctx, http.MethodPost, "/drafts", d, nil); err != nil {
		log.Warnf("[SyncClient] draft %d kept locally, push failed: %v", d.ID, err)
	}
	return nil
}

// SaveReport works like SaveDraft for finalized reports.
func (c *Client) SaveReport(ctx context.Context, r *models.Report) error {
	if r.ID == 0 {
		return errors.New("report must include an id")
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = models.Now()
	}
	if err := c.cache.upsertReport(*r); err != nil {
		return fmt.Errorf("cache report %d: %w", r.ID, err)
	}
	if err := c.do(ctx, http.MethodPost, "/reports", r, nil); err != nil {
		log.Warnf("[SyncClient] report %d kept locally, push failed: %v", r.ID, err)
	}
	return nil
}

// DeleteDraft removes a draft locally and on the server.
func (c *Client) DeleteDraft(ctx context.Context, id int64) error {
	if err := c.cache.deleteDraft(id); err != nil {
		return fmt.Errorf("uncache draft %d: %w", id, err)
	}
	if err := c.do(ctx, http.MethodDelete, "/drafts/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		log.Warnf("[SyncClient] draft %d removed locally, server delete failed: %v", id, err)
	}
	return nil
}

// DeleteReport removes a report locally and on the server.
func (c *Client) DeleteReport(ctx context.Context, id int64) error {
	if err := c.cache.deleteReport(id); err != nil {
		return fmt.Errorf("uncache report %d: %w", id, err)
	}
	if err := c.do(ctx, http.MethodDelete, "/reports/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		log.Warnf("[SyncClient] report %d removed locally, server delete failed: %v", id, err)
	}
	return nil
}

func notFound(err error) error {
	var ae *apiError
	if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return err
}

// FetchDraft loads one draft with its photos.
func (c *Client) FetchDraft(ctx context.Context, id int64) (models.Draft, error) {
	var d models.Draft
	err := c.do(ctx, http.MethodGet, "/drafts/"+strconv.FormatInt(id, 10), nil, &d)
	return d, notFound(err)
}

// FetchReport loads one report with its photos.
func (c *Client) FetchReport(ctx context.Context, id int64) (models.Report, error) {
	var r models.Report
	err := c.do(ctx, http.MethodGet, "/reports/"+strconv.FormatInt(id, 10), nil, &r)
	return r, notFound(err)
}

// MergePhotos copies the photos of full into rec when rec came from a list
// without them.
func MergePhotos(rec *models.InspectionRecord, full models.InspectionRecord) {
	if len(rec.Photos) == 0 && len(full.Photos) > 0 {
		rec.Photos = full.Clone().Photos
	}
}

// OpenDraft returns a listed draft completed with its photos so it can be
// loaded into an editing session. The listed copy is returned when the fetch fails.
func (c *Client) OpenDraft(ctx context.Context, listed models.Draft) models.Draft {
	if len(listed.Photos) > 0 {
		return listed
	}
	full, err := c.FetchDraft(ctx, listed.ID)
	if err != nil {
		log.Warnf("[SyncClient] fetching photos of draft %d failed: %v", listed.ID, err)
		return listed
	}
	MergePhotos(&listed.InspectionRecord, full.InspectionRecord)
	return listed
}

// ReportForExport returns a listed report completed with its photos. On
// fetch failure whatever data the listed copy has is used.
func (c *Client) ReportForExport(ctx context.Context, listed models.Report) models.Report {
	if len(listed.Photos) > 0 {
		return listed
	}
	full, err := c.FetchReport(ctx, listed.ID)
	if err != nil {
		log.Warnf("[SyncClient] fetching photos of report %d failed: %v", listed.ID, err)
		return listed
	}
	MergePhotos(&listed.InspectionRecord, full.InspectionRecord)
	return listed
}
