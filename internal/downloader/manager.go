package downloader

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/brogergvhs/webtoond/internal/library"
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const DefaultChapterWorkers = 4

// Progress is a snapshot of a running batch. Image counts cover the
// chapters finished so far.
type Progress struct {
	ChapterURL string
	EpisodeNo  string

	CompletedChapters int
	FailedChapters    int
	TotalChapters     int

	CompletedImages int
	FailedImages    int
	TotalImages     int
}

// ProgressFunc is called once per finished chapter, in completion order,
// from the goroutine that called the Manager.
type ProgressFunc func(Progress)

type Options struct {
	ChapterWorkers int
	Chapter        ChapterOptions
	Log            *ui.Logger
}

// Manager downloads batches of chapters. Only the goroutine running a batch
// touches the queue and downloaded records; chapter workers report back
// over a channel.
type Manager struct {
	chapters *ChapterDownloader
	images   *ImageDownloader
	workers  int
	log      *ui.Logger

	Stats ui.Stats
}

func NewManager(pages PageFetcher, images *ImageDownloader, opts Options) *Manager {
	if opts.ChapterWorkers < 1 {
		opts.ChapterWorkers = DefaultChapterWorkers
	}
	if opts.Log == nil {
		opts.Log = ui.Discard()
	}
	if opts.Chapter.Log == nil {
		opts.Chapter.Log = opts.Log
	}

	return &Manager{
		chapters: NewChapterDownloader(pages, images, opts.Chapter),
		images:   images,
		workers:  opts.ChapterWorkers,
		log:      opts.Log,
	}
}

type chapterOutcome struct {
	ch  *webtoon.Chapter
	res ChapterResult
	err error
}

// DownloadSeriesChapters downloads chapters into seriesDir and returns the
// number of images written per chapter URL. The batch is queued on disk
// first; the queue is cleared only if every chapter got at least one image.
func (m *Manager) DownloadSeriesChapters(
	ctx context.Context,
	series *webtoon.Series,
	chapters []*webtoon.Chapter,
	seriesDir string,
	progress ProgressFunc,
) map[string]int {
	queue := library.NewQueue(seriesDir, m.log)
	if err := queue.Save(chapters); err != nil {
		m.log.Warnf("could not save download queue: %v", err)
	}

	results := make(map[string]int, len(chapters))
	for _, ch := range chapters {
		results[ch.URL] = 0
	}

	outcomes := make(chan chapterOutcome)
	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup

	for _, ch := range chapters {
		wg.Add(1)
		go func(ch *webtoon.Chapter) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomes <- chapterOutcome{ch: ch, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			res, err := m.chapters.Download(ctx, ch, seriesDir)
			outcomes <- chapterOutcome{ch: ch, res: res, err: err}
		}(ch)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	p := Progress{TotalChapters: len(chapters)}
	var succeeded []string

	for o := range outcomes {
		results[o.ch.URL] = o.res.Images

		p.ChapterURL, p.EpisodeNo = o.ch.URL, o.ch.EpisodeNo
		p.CompletedImages += o.res.Images
		p.FailedImages += o.res.Failed
		p.TotalImages += o.res.Images + o.res.Failed

		m.Stats.TotalImages.Add(int64(o.res.Images))
		m.Stats.FailedImages.Add(int64(o.res.Failed))
		m.Stats.TotalBytes.Add(o.res.Bytes)

		if o.res.Images > 0 {
			p.CompletedChapters++
			m.Stats.TotalChapters.Add(1)
			succeeded = append(succeeded, o.ch.EpisodeNo)
		} else {
			p.FailedChapters++
			m.Stats.FailedChapters.Add(1)
			if o.err != nil && !errors.Is(o.err, context.Canceled) {
				m.log.Warnf("episode %s failed: %v", o.ch.EpisodeNo, o.err)
			}
		}

		if progress != nil {
			progress(p)
		}
	}

	m.record(series, seriesDir, succeeded)

	if p.FailedChapters == 0 {
		if err := queue.Clear(); err == nil {
			m.log.Debugf("all %d chapters downloaded, queue cleared", len(chapters))
		}
	} else {
		m.log.Warnf("%d of %d chapters failed; run resume to retry", p.FailedChapters, len(chapters))
	}

	return results
}

// record adds finished episodes to downloaded.json and refreshes the series
// files so the chapter list on disk matches the batch.
func (m *Manager) record(series *webtoon.Series, seriesDir string, episodes []string) {
	if len(episodes) > 0 {
		done := library.LoadDownloaded(seriesDir, m.log)
		done.Add(episodes...)
		if err := done.Save(); err != nil {
			m.log.Warnf("could not update %s: %v", library.DownloadedFile, err)
		}
	}

	if series != nil {
		if err := library.WriteSeries(seriesDir, series); err != nil {
			m.log.Warnf("%v", err)
		}
	}
}

// Resume re-runs the queued batch of series, skipping chapters already on
// disk. It returns library.ErrNoQueue when nothing was queued.
func (m *Manager) Resume(ctx context.Context, series *webtoon.Series, seriesDir string, progress ProgressFunc) (map[string]int, error) {
	pending, err := library.Pending(seriesDir, series, m.log)
	if err != nil {
		return nil, err
	}

	if len(pending) == 0 {
		m.log.Infof("all queued chapters are already downloaded")
		_ = library.NewQueue(seriesDir, m.log).Clear()
		return map[string]int{}, nil
	}

	m.log.Infof("resuming %d chapter(s)", len(pending))
	return m.DownloadSeriesChapters(ctx, series, pending, seriesDir, progress), nil
}

// DownloadBanners saves the series banners next to its chapters. A missing
// URL or a failed download leaves that banner out; the returned paths are
// the files written.
func (m *Manager) DownloadBanners(ctx context.Context, series *webtoon.Series, seriesDir string) []string {
	var written []string
	for _, b := range []struct{ url, file string }{
		{series.BannerBgURL, library.BannerBgFile},
		{series.BannerFgURL, library.BannerFgFile},
	} {
		if b.url == "" {
			continue
		}
		path := filepath.Join(seriesDir, b.file)
		if _, err := m.images.Download(ctx, b.url, path, webtoon.HomeURL, nil); err != nil {
			m.log.Warnf("banner %s: %v", b.file, err)
			continue
		}
		written = append(written, path)
	}
	return written
}
