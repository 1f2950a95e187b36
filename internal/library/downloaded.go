package library

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/brogergvhs/webtoond/internal/ui"
)

// DownloadedRecord is downloaded.json.
type DownloadedRecord struct {
	Episodes  []string  `json:"episodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Downloaded is the set of episode numbers confirmed on disk.
type Downloaded struct {
	path     string
	episodes map[string]bool
	log      *ui.Logger
}

// LoadDownloaded reads the record in seriesDir. A missing or unparseable
// file yields an empty set. The older bare-list form is accepted.
func LoadDownloaded(seriesDir string, log *ui.Logger) *Downloaded {
	if log == nil {
		log = ui.Discard()
	}
	d := &Downloaded{
		path:     filepath.Join(seriesDir, DownloadedFile),
		episodes: map[string]bool{},
		log:      log,
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warnf("ignoring unreadable %s: %v", DownloadedFile, err)
		}
		return d
	}

	var rec DownloadedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		var legacy []string
		if lerr := json.Unmarshal(data, &legacy); lerr != nil {
			log.Warnf("ignoring unparseable %s: %v", DownloadedFile, err)
			return d
		}
		rec.Episodes = legacy
	}

	for _, ep := range rec.Episodes {
		d.episodes[ep] = true
	}
	return d
}

func (d *Downloaded) Has(episode string) bool {
	return d.episodes[episode]
}

func (d *Downloaded) Add(episodes ...string) {
	for _, ep := range episodes {
		d.episodes[ep] = true
	}
}

func (d *Downloaded) Len() int {
	return len(d.episodes)
}

// Episodes returns the set sorted numerically where possible.
func (d *Downloaded) Episodes() []string {
	out := make([]string, 0, len(d.episodes))
	for ep := range d.episodes {
		out = append(out, ep)
	}
	slices.SortFunc(out, compareEpisodes)
	return out
}

func compareEpisodes(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na - nb
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (d *Downloaded) Save() error {
	return writeJSON(d.path, DownloadedRecord{
		Episodes:  d.Episodes(),
		UpdatedAt: time.Now().UTC(),
	})
}
