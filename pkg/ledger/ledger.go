package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set"
	json "github.com/goccy/go-json"

	"igsaved/pkg/logger"
	"igsaved/pkg/models"
)

// File is the on-disk ledger document
type File struct {
	Downloaded  []string `json:"downloaded"`
	LastUpdated string   `json:"last_updated"`
}

// Ledger is the set of post IDs already materialized locally
type Ledger struct {
	path        string
	ids         mapset.Set
	lastUpdated time.Time
	logger      logger.Logger
	now         func() time.Time
}

// Open loads the ledger at path. It never fails: a missing file yields an
// empty ledger, and a corrupt one yields an empty ledger plus a warning.
func Open(path string, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewNopLogger()
	}
	l := &Ledger{
		path:   path,
		ids:    mapset.NewSet(),
		logger: log.WithField("ledger", path),
		now:    time.Now,
	}

	if err := l.load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("no ledger found, starting empty")
		} else {
			l.logger.WithError(err).Warn("ledger unreadable, starting empty")
			l.ids = mapset.NewSet()
		}
		return l
	}

	l.logger.InfoWithFields("ledger loaded", map[string]interface{}{
		"downloaded":   l.ids.Cardinality(),
		"last_updated": l.lastUpdated,
	})
	return l
}

func (l *Ledger) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to decode ledger: %w", err)
	}

	for _, id := range f.Downloaded {
		if id != "" {
			l.ids.Add(id)
		}
	}
	if t, err := time.Parse(time.RFC3339, f.LastUpdated); err == nil {
		l.lastUpdated = t
	}
	return nil
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// IsDownloaded reports whether id has been recorded
func (l *Ledger) IsDownloaded(id string) bool {
	return l.ids.Contains(id)
}

// MarkDownloaded records id in memory. Call Save to persist it.
func (l *Ledger) MarkDownloaded(id string) {
	l.ids.Add(id)
}

// Count returns the number of recorded IDs
func (l *Ledger) Count() int {
	return l.ids.Cardinality()
}

// LastUpdated returns the timestamp of the last load or save, zero if never saved
func (l *Ledger) LastUpdated() time.Time {
	return l.lastUpdated
}

// IDs returns the recorded IDs sorted
func (l *Ledger) IDs() []string {
	raw := l.ids.ToSlice()
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	sort.Strings(ids)
	return ids
}

// Filter returns the posts not yet recorded, in their original order, and
// how many were skipped
func (l *Ledger) Filter(posts []models.Post) ([]models.Post, int) {
	pending := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !l.IsDownloaded(p.ID) {
			pending = append(pending, p)
		}
	}
	return pending, len(posts) - len(pending)
}

// Save overwrites the ledger file with the current set and a fresh timestamp
func (l *Ledger) Save() error {
	now := l.now().UTC()
	doc := File{
		Downloaded:  l.IDs(),
		LastUpdated: now.Format(time.RFC3339),
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary ledger file: %w", err)
	}
	tmpName := tmp.Name()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync ledger file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}

	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	l.lastUpdated = now
	l.logger.DebugWithFields("ledger saved", map[string]interface{}{
		"downloaded": len(doc.Downloaded),
	})
	return nil
}
