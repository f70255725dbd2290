package syncclient

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
	"github.com/spf13/afero"
)

// Device storage keys
const (
	draftsFile   = "capDrafts.json"
	reportsFile  = "capSavedReports.json"
	loggedInFile = "capIsLoggedIn"
)

type localCache struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

func (c *localCache) path(name string) string {
	return filepath.Join(c.dir, name)
}

func readList[T any](c *localCache, name string) ([]T, error) {
	data, err := afero.ReadFile(c.fs, c.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func writeList[T any](c *localCache, name string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(c.fs, c.path(name), data, 0o644)
}

// upsertList replaces the item with the same id or puts a new one in front.
func upsertList[T any, PT interface {
	*T
	Record() *models.InspectionRecord
}](c *localCache, name string, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := readList[T](c, name)
	if err != nil {
		return err
	}
	id := PT(&item).Record().ID
	for i := range items {
		if PT(&items[i]).Record().ID == id {
			items[i] = item
			return writeList(c, name, items)
		}
	}
	return writeList(c, name, append([]T{item}, items...))
}

func deleteList[T any, PT interface {
	*T
	Record() *models.InspectionRecord
}](c *localCache, name string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := readList[T](c, name)
	if err != nil {
		return err
	}
	kept := items[:0]
	for i := range items {
		if PT(&items[i]).Record().ID != id {
			kept = append(kept, items[i])
		}
	}
	return writeList(c, name, kept)
}

func (c *localCache) readDrafts() ([]models.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readList[models.Draft](c, draftsFile)
}

func (c *localCache) readReports() ([]models.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readList[models.Report](c, reportsFile)
}

func (c *localCache) writeDrafts(d []models.Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeList(c, draftsFile, d)
}

func (c *localCache) writeReports(r []models.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeList(c, reportsFile, r)
}

func (c *localCache) upsertDraft(d models.Draft) error {
	return upsertList[models.Draft](c, draftsFile, d)
}

func (c *localCache) upsertReport(r models.Report) error {
	return upsertList[models.Report](c, reportsFile, r)
}

func (c *localCache) deleteDraft(id int64) error {
	return deleteList[models.Draft](c, draftsFile, id)
}

func (c *localCache) deleteReport(id int64) error {
	return deleteList[models.Report](c, reportsFile, id)
}
