package library

import (
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

type Status struct {
	TotalChapters      int
	DownloadedChapters int
	PendingQueue       bool
	QueuedChapters     int
	Complete           bool
}

func (s Status) Percent() float64 {
	if s.TotalChapters == 0 {
		return 0
	}
	return float64(s.DownloadedChapters) * 100 / float64(s.TotalChapters)
}

// Inspect reports download progress for s. A chapter counts as downloaded
// when its episode is recorded or its folder already holds images.
func Inspect(seriesDir string, s *webtoon.Series, log *ui.Logger) Status {
	done := LoadDownloaded(seriesDir, log)

	for _, c := range s.Chapters {
		if done.Has(c.EpisodeNo) {
			c.Downloaded = true
			continue
		}
		c.CheckDownloadExists(seriesDir)
	}

	st := Status{
		TotalChapters:      len(s.Chapters),
		DownloadedChapters: s.DownloadedCount(),
		Complete:           s.IsComplete(),
	}

	q := NewQueue(seriesDir, log)
	if rec, err := q.Record(); err == nil {
		st.PendingQueue = true
		st.QueuedChapters = len(rec.Chapters)
	}

	return st
}

// Pending returns the queued chapters of s that are not yet downloaded, in
// queue order. URLs that no longer match a known chapter are dropped.
func Pending(seriesDir string, s *webtoon.Series, log *ui.Logger) ([]*webtoon.Chapter, error) {
	rec, err := NewQueue(seriesDir, log).Record()
	if err != nil {
		return nil, err
	}

	done := LoadDownloaded(seriesDir, log)

	var out []*webtoon.Chapter
	for _, u := range rec.Chapters {
		c := s.ChapterByURL(u)
		if c == nil || done.Has(c.EpisodeNo) || c.CheckDownloadExists(seriesDir) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
