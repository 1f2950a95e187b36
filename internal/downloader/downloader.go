package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/comments"
	"github.com/brogergvhs/webtoond/internal/library"
	"github.com/brogergvhs/webtoond/internal/parser"
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/util"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const DefaultImageWorkers = 20

// ErrNoImages means the chapter page listed no downloadable images.
var ErrNoImages = errors.New("no images found")

// PageFetcher returns parsed pages; *fetch.Fetcher satisfies it.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

type ChapterOptions struct {
	ImageWorkers int
	// Comments enables extracting, summarizing and saving reader comments.
	Comments   bool
	Summarizer *comments.Summarizer
	CBZ        bool
	Tracker    ui.Tracker
	Log        *ui.Logger
}

type ChapterResult struct {
	Images   int
	Failed   int
	Bytes    int64
	Comments int
	Path     string
}

type ChapterDownloader struct {
	pages  PageFetcher
	images *ImageDownloader
	opts   ChapterOptions
	log    *ui.Logger
}

func NewChapterDownloader(pages PageFetcher, images *ImageDownloader, opts ChapterOptions) *ChapterDownloader {
	if opts.ImageWorkers < 1 {
		opts.ImageWorkers = DefaultImageWorkers
	}
	if opts.Summarizer == nil {
		opts.Summarizer = comments.NewSummarizer(true, opts.Log)
	}
	if opts.Tracker == nil {
		opts.Tracker = ui.NopTracker{}
	}
	if opts.Log == nil {
		opts.Log = ui.Discard()
	}
	return &ChapterDownloader{pages: pages, images: images, opts: opts, log: opts.Log}
}

// Download fetches the chapter page, saves its comments and downloads every
// image into the chapter folder under seriesDir. The chapter is marked
// downloaded iff at least one image was written.
func (c *ChapterDownloader) Download(ctx context.Context, ch *webtoon.Chapter, seriesDir string) (ChapterResult, error) {
	var res ChapterResult

	doc, err := c.pages.Fetch(ctx, ch.URL)
	if err != nil {
		return res, fmt.Errorf("episode %s: %w", ch.EpisodeNo, err)
	}

	urls := parser.ParseImages(doc, ch.URL)
	if len(urls) == 0 {
		return res, fmt.Errorf("episode %s: %w", ch.EpisodeNo, ErrNoImages)
	}
	ch.ImageCount = len(urls)
	c.log.Debugf("episode %s: %d images", ch.EpisodeNo, len(urls))

	dir := library.ChapterDir(seriesDir, ch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return res, err
	}
	res.Path = dir

	if c.opts.Comments {
		res.Comments = c.saveComments(doc, ch, dir)
	}

	ph := c.opts.Tracker.Track("Ep " + ch.EpisodeNo)
	files, failed, bytes := c.images.downloadAll(ctx, urls, dir, ch.URL, c.opts.ImageWorkers, ph)

	res.Images, res.Failed, res.Bytes = len(files), failed, bytes
	if res.Images == 0 {
		return res, ctx.Err()
	}

	ch.MarkDownloaded(res.Images, dir)

	if c.opts.CBZ {
		if err := util.CreateCBZ(files, dir+".cbz"); err != nil {
			c.log.Warnf("episode %s: cbz: %v", ch.EpisodeNo, err)
		}
	}

	return res, nil
}

// saveComments never fails the chapter: problems are logged and the image
// download goes on.
func (c *ChapterDownloader) saveComments(doc *goquery.Document, ch *webtoon.Chapter, dir string) (n int) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warnf("episode %s: comment extraction failed: %v", ch.EpisodeNo, r)
			n = 0
		}
	}()

	found := parser.ParseComments(doc)
	if len(found) == 0 {
		c.log.Debugf("episode %s: no comments found", ch.EpisodeNo)
		return 0
	}

	summary := c.opts.Summarizer.Summarize(found)
	ch.AddComments(found, summary)

	if _, err := comments.WriteFile(dir, ch.EpisodeNo, found, summary); err != nil {
		c.log.Warnf("episode %s: %v", ch.EpisodeNo, err)
		return 0
	}

	return len(found)
}
