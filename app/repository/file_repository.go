package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/spf13/afero"
)

// fileDocument is the on-disk shape of the flat-file store.
type fileDocument struct {
	Drafts  []models.Draft  `json:"drafts"`
	Reports []models.Report `json:"reports"`
}

// FileStore keeps both collections in one JSON document. Every write
// rewrites the whole document through a temp file and a rename.
type FileStore struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store for the document at path on fs
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// NewFileRepositories creates repositories backed by a flat JSON file
func NewFileRepositories(fs afero.Fs, path string) *Repositories {
	store := NewFileStore(fs, path)
	return &Repositories{
		Drafts:  store.Drafts(),
		Reports: store.Reports(),
	}
}

// Drafts returns the draft collection of the store
func (s *FileStore) Drafts() DraftRepository {
	return &fileCollection[models.Draft, *models.Draft]{
		store: s,
		pick:  func(d *fileDocument) *[]models.Draft { return &d.Drafts },
	}
}

// Reports returns the report collection of the store
func (s *FileStore) Reports() ReportRepository {
	return &fileCollection[models.Report, *models.Report]{
		store: s,
		pick:  func(d *fileDocument) *[]models.Report { return &d.Reports },
	}
}

// load reads the document. A missing file is an empty document.
func (s *FileStore) load() (*fileDocument, error) {
	doc := &fileDocument{}
	data, err := afero.ReadFile(s.fs, s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) save(doc *fileDocument) error {
	if doc.Drafts == nil {
		doc.Drafts = []models.Draft{}
	}
	if doc.Reports == nil {
		doc.Reports = []models.Report{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return s.fs.Rename(tmp, s.path)
}

// fileCollection implements Collection on one array of the FileStore document
type fileCollection[T any, PT stamped[T]] struct {
	store *FileStore
	pick  func(*fileDocument) *[]T
}

// List retrieves all records, newest first
func (c *fileCollection[T, PT]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	c.store.mu.Lock()
	doc, err := c.store.load()
	c.store.mu.Unlock()
	if err != nil {
		return nil, err
	}

	items := *c.pick(doc)
	if items == nil {
		items = []T{}
	}
	sortNewestFirst[T, PT](items)
	stripPhotos[T, PT](items, opts)
	return items, nil
}

// Get retrieves one full record by its id
func (c *fileCollection[T, PT]) Get(ctx context.Context, id int64) (*T, error) {
	c.store.mu.Lock()
	doc, err := c.store.load()
	c.store.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, item := range *c.pick(doc) {
		if PT(&item).Record().ID == id {
			PT(&item).Record().Normalize()
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

// Upsert replaces the record with the same id or appends a new one
func (c *fileCollection[T, PT]) Upsert(ctx context.Context, item *T) error {
	if err := prepare[T, PT](item); err != nil {
		return err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	doc, err := c.store.load()
	if err != nil {
		return err
	}
	items := c.pick(doc)
	id := PT(item).Record().ID
	for i := range *items {
		if PT(&(*items)[i]).Record().ID == id {
			(*items)[i] = *item
			return c.store.save(doc)
		}
	}
	*items = append(*items, *item)
	return c.store.save(doc)
}

// Delete removes the record with the given id. Deleting an absent id is not an error.
func (c *fileCollection[T, PT]) Delete(ctx context.Context, id int64) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	doc, err := c.store.load()
	if err != nil {
		return err
	}
	items := c.pick(doc)
	kept := (*items)[:0]
	for _, item := range *items {
		if PT(&item).Record().ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(*items) {
		return nil
	}
	*items = kept
	return c.store.save(doc)
}
