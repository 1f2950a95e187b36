// Package library owns the per-series folder on disk: the series and chapter
// link records, the downloaded-episode record and the pending download queue.
// Only the orchestrating goroutine reads or writes these files.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	InfoFile       = "manga_info.json"
	LinksFile      = "chapter_links.json"
	DownloadedFile = "downloaded.json"
	QueueFile      = "download_queue.json"
	BannerBgFile   = "banner_bg.jpg"
	BannerFgFile   = "banner_fg.png"
)

// SeriesDir is the folder of s under the output root.
func SeriesDir(root string, s *webtoon.Series) string {
	return filepath.Join(root, s.FolderName())
}

// ChapterDir is the folder of c inside seriesDir.
func ChapterDir(seriesDir string, c *webtoon.Chapter) string {
	return filepath.Join(seriesDir, c.FolderName())
}

// ChapterLinks is the chapter_links.json record.
type ChapterLinks struct {
	TitleNo       string   `json:"title_no"`
	SeriesName    string   `json:"series_name"`
	TotalChapters int      `json:"total_chapters"`
	Chapters      []string `json:"chapters"`
}

// writeJSON replaces path atomically so an interrupted run never leaves a
// truncated record behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

// readJSON reports os.ErrNotExist for a missing file and a wrapped error for
// one that cannot be decoded.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteSeries stores manga_info.json and chapter_links.json for s.
func WriteSeries(dir string, s *webtoon.Series) error {
	if err := writeJSON(filepath.Join(dir, InfoFile), s); err != nil {
		return fmt.Errorf("write series info: %w", err)
	}

	links := ChapterLinks{
		TitleNo:       s.TitleNo,
		SeriesName:    s.Slug,
		TotalChapters: len(s.Chapters),
		Chapters:      make([]string, 0, len(s.Chapters)),
	}
	for _, c := range s.Chapters {
		links.Chapters = append(links.Chapters, c.URL)
	}

	if err := writeJSON(filepath.Join(dir, LinksFile), links); err != nil {
		return fmt.Errorf("write chapter links: %w", err)
	}

	return nil
}

// ReadSeries loads manga_info.json.
func ReadSeries(dir string) (*webtoon.Series, error) {
	var s webtoon.Series
	if err := readJSON(filepath.Join(dir, InfoFile), &s); err != nil {
		return nil, err
	}
	s.NumChapters = len(s.Chapters)
	return &s, nil
}

// ReadLinks loads chapter_links.json.
func ReadLinks(dir string) (*ChapterLinks, error) {
	var l ChapterLinks
	if err := readJSON(filepath.Join(dir, LinksFile), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
