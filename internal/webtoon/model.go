// Package webtoon holds the series, chapter and comment records shared by
// the scraping and download pipeline, plus the URL helpers that derive
// identifiers from listing and viewer URLs.
package webtoon

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Comment is one reader comment as shown under a chapter. Date and Likes are
// kept exactly as the site renders them ("Jan 2, 2024", "1.2K").
type Comment struct {
	Username string `json:"username"`
	Date     string `json:"date"`
	Text     string `json:"text"`
	Likes    string `json:"likes"`
}

type Chapter struct {
	EpisodeNo string `json:"episode_no"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	TitleNo   string `json:"title_no,omitempty"`

	ImageCount       int        `json:"image_count"`
	Downloaded       bool       `json:"is_downloaded"`
	DownloadPath     string     `json:"download_path,omitempty"`
	ImagesDownloaded int        `json:"images_downloaded"`
	DownloadedAt     *time.Time `json:"download_timestamp,omitempty"`

	Comments       []Comment `json:"comments,omitempty"`
	CommentSummary string    `json:"comment_summary,omitempty"`
}

// NewChapter builds a chapter from its viewer URL.
func NewChapter(link string) *Chapter {
	ep, title := ExtractChapterInfo(link)
	return &Chapter{EpisodeNo: ep, Title: title, URL: link}
}

// ChaptersFromLinks keeps link order.
func ChaptersFromLinks(links []string) []*Chapter {
	out := make([]*Chapter, 0, len(links))
	for _, l := range links {
		out = append(out, NewChapter(l))
	}
	return out
}

func (c *Chapter) Equal(o *Chapter) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.EpisodeNo == o.EpisodeNo && c.URL == o.URL
}

func (c *Chapter) FolderName() string {
	return ChapterFolderName(c.EpisodeNo, c.Title)
}

func (c *Chapter) MarkDownloaded(images int, path string) {
	now := time.Now().UTC()
	c.Downloaded = true
	c.ImagesDownloaded = images
	c.ImageCount = max(c.ImageCount, images)
	c.DownloadedAt = &now
	if path != "" {
		c.DownloadPath = path
	}
}

func (c *Chapter) AddComments(comments []Comment, summary string) {
	c.Comments = comments
	if summary != "" {
		c.CommentSummary = summary
	}
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// CheckDownloadExists reports whether the chapter folder under seriesDir
// already holds image files, and records that state on the chapter.
func (c *Chapter) CheckDownloadExists(seriesDir string) bool {
	dir := filepath.Join(seriesDir, c.FolderName())
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			n++
		}
	}
	if n == 0 {
		return false
	}

	c.Downloaded = true
	c.ImagesDownloaded = n
	c.DownloadPath = dir
	return true
}

// Series is one title on the platform. It owns its chapter list; stored
// copies in the database are independent and must be re-saved explicitly.
type Series struct {
	TitleNo     string   `json:"title_no"`
	Slug        string   `json:"series_name"`
	Title       string   `json:"display_title"`
	Author      string   `json:"author,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	Grade       *float64 `json:"grade"`
	Views       string   `json:"views,omitempty"`
	Subscribers string   `json:"subscribers,omitempty"`
	DayInfo     string   `json:"day_info,omitempty"`
	URL         string   `json:"url"`
	BannerBgURL string   `json:"banner_bg_url,omitempty"`
	BannerFgURL string   `json:"banner_fg_url,omitempty"`

	NumChapters int        `json:"num_chapters"`
	Chapters    []*Chapter `json:"chapters"`
	LastUpdated time.Time  `json:"last_updated"`
}

func (s *Series) FolderName() string {
	return SeriesFolderName(s.TitleNo, s.Slug)
}

// AddChapter appends c unless an equal chapter is already attached.
func (s *Series) AddChapter(c *Chapter) {
	for _, have := range s.Chapters {
		if have.Equal(c) {
			return
		}
	}
	s.Chapters = append(s.Chapters, c)
	s.NumChapters = len(s.Chapters)
}

func (s *Series) SetChapters(chs []*Chapter) {
	s.Chapters = chs
	s.NumChapters = len(chs)
}

func (s *Series) ChapterByURL(u string) *Chapter {
	for _, c := range s.Chapters {
		if c.URL == u {
			return c
		}
	}
	return nil
}

func (s *Series) DownloadedCount() int {
	n := 0
	for _, c := range s.Chapters {
		if c.Downloaded {
			n++
		}
	}
	return n
}

func (s *Series) IsComplete() bool {
	return len(s.Chapters) > 0 && s.DownloadedCount() == len(s.Chapters)
}
