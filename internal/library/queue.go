package library

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

// ErrNoQueue means there is no pending batch to resume.
var ErrNoQueue = errors.New("no pending downloads")

// QueueRecord is download_queue.json. Timestamp is in Unix seconds.
type QueueRecord struct {
	Timestamp     float64  `json:"timestamp"`
	TotalChapters int      `json:"total_chapters"`
	Chapters      []string `json:"chapters"`
}

// Queue is the persisted batch of chapters a download run still has to
// confirm. It is written before a batch starts and removed only after every
// chapter yielded at least one image.
type Queue struct {
	path string
	log  *ui.Logger
}

func NewQueue(seriesDir string, log *ui.Logger) *Queue {
	if log == nil {
		log = ui.Discard()
	}
	return &Queue{path: filepath.Join(seriesDir, QueueFile), log: log}
}

func (q *Queue) Path() string {
	return q.path
}

// Save overwrites the queue with the URLs of chapters, in order.
func (q *Queue) Save(chapters []*webtoon.Chapter) error {
	rec := QueueRecord{
		Timestamp:     float64(time.Now().UnixMilli()) / 1000,
		TotalChapters: len(chapters),
		Chapters:      make([]string, 0, len(chapters)),
	}
	for _, c := range chapters {
		rec.Chapters = append(rec.Chapters, c.URL)
	}

	return writeJSON(q.path, rec)
}

// Load returns the queued URLs, or nil when the queue is absent or cannot be
// read.
func (q *Queue) Load() []string {
	rec, err := q.Record()
	if err != nil {
		return nil
	}
	return rec.Chapters
}

// Record returns the full queue record, or ErrNoQueue when there is none.
// An unreadable file counts as no queue.
func (q *Queue) Record() (*QueueRecord, error) {
	var rec QueueRecord
	if err := readJSON(q.path, &rec); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			q.log.Warnf("ignoring unreadable download queue: %v", err)
		}
		return nil, ErrNoQueue
	}
	if rec.Chapters == nil {
		rec.Chapters = []string{}
	}
	return &rec, nil
}

func (q *Queue) Exists() bool {
	return exists(q.path)
}

func (q *Queue) Clear() error {
	err := os.Remove(q.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		q.log.Warnf("could not clear download queue: %v", err)
		return err
	}
	return nil
}
