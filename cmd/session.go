package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/brogergvhs/webtoond/internal/comments"
	"github.com/brogergvhs/webtoond/internal/config"
	"github.com/brogergvhs/webtoond/internal/downloader"
	"github.com/brogergvhs/webtoond/internal/fetch"
	"github.com/brogergvhs/webtoond/internal/library"
	"github.com/brogergvhs/webtoond/internal/parser"
	"github.com/brogergvhs/webtoond/internal/store"
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/util"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

// session bundles what every scraping command needs: the merged config,
// a logger, the page fetcher and the image downloader.
type session struct {
	cfg     *config.Config
	log     *ui.Logger
	fetcher *fetch.Fetcher
	images  *downloader.ImageDownloader
}

func openSession(ctx context.Context, opts config.Options) (*session, error) {
	opts.IgnoreConfig = flagIgnoreConfig
	opts.Debug = opts.Debug || flagDebug

	cfg, usedPath, err := config.LoadMerged(opts)
	if err != nil {
		return nil, err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("config: %s", usedPath)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     cfg.Timeout,
		UserAgent:   cfg.UserAgent,
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: log.With("http"),
	})
	if err != nil {
		return nil, err
	}

	fopts := fetch.Options{
		Retries:    cfg.Retries,
		RenderWait: cfg.RenderWait,
		HomeURL:    webtoon.HomeURL,
		Log:        log.With("fetch"),
	}
	if cfg.Render {
		r, err := fetch.NewChromeRenderer(ctx, fetch.ChromeOptions{
			ExecPath:  cfg.ChromePath,
			UserAgent: cfg.UserAgent,
			Log:       log.With("chrome"),
		})
		if err != nil {
			log.Warnf("rendering disabled, falling back to plain requests: %v", err)
		} else {
			fopts.Renderer = r
		}
	}

	images := downloader.NewImageDownloader(client, downloader.ImageOptions{
		MinBytes: cfg.MinImageBytes,
		Retries:  cfg.Retries,
		Timeout:  cfg.Timeout,
		Log:      log.With("image"),
	})

	fetcher := fetch.New(client, fopts)
	log.Debugf("render viewer pages with chrome: %t", fetcher.Rendering())

	return &session{
		cfg:     cfg,
		log:     log,
		fetcher: fetcher,
		images:  images,
	}, nil
}

func (s *session) Close() {
	s.fetcher.Close()
}

func (s *session) manager(tracker ui.Tracker) *downloader.Manager {
	return downloader.NewManager(s.fetcher, s.images, downloader.Options{
		ChapterWorkers: s.cfg.ChapterWorkers,
		Log:            s.log.With("download"),
		Chapter: downloader.ChapterOptions{
			ImageWorkers: s.cfg.ImageWorkers,
			Comments:     s.cfg.ExtractComments,
			Summarizer:   comments.NewSummarizer(s.cfg.NLP, s.log.With("comments")),
			CBZ:          s.cfg.CBZ,
			Tracker:      tracker,
		},
	})
}

// scrapeSeries fetches every listing page of rawURL and builds the series
// with its chapters. The series files are written to its folder under the
// output root, whose path is returned alongside.
func (s *session) scrapeSeries(ctx context.Context, rawURL string) (*webtoon.Series, string, error) {
	listing := webtoon.NormalizeToListing(rawURL)
	titleNo, _ := webtoon.ExtractListingInfo(listing)
	s.log.Debugf("listing %s (title_no=%s)", listing, titleNo)

	pages := s.fetcher.FetchPaginated(ctx, webtoon.ListingBase(listing), titleNo)
	if len(pages) == 0 {
		return nil, "", fmt.Errorf("no chapters found: listing %s could not be fetched", listing)
	}

	series := parser.BuildSeries(pages[0], listing)
	series.SetChapters(parser.CollectChapters(pages, series.TitleNo))
	if series.NumChapters == 0 {
		return nil, "", fmt.Errorf("no chapters found: %s lists no episodes", listing)
	}

	dir := library.SeriesDir(s.cfg.Output, series)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("cannot create series folder: %w", err)
	}
	for _, c := range series.Chapters {
		c.CheckDownloadExists(dir)
	}
	if err := library.WriteSeries(dir, series); err != nil {
		s.log.Warnf("could not write series files: %v", err)
	}

	return series, dir, nil
}

// seriesFromDisk loads the series saved by an earlier run, scraping it
// again when nothing usable is on disk.
func (s *session) seriesFromDisk(ctx context.Context, rawURL string) (*webtoon.Series, string, error) {
	titleNo, slug := webtoon.ExtractListingInfo(webtoon.NormalizeToListing(rawURL))
	dir := library.SeriesDir(s.cfg.Output, &webtoon.Series{TitleNo: titleNo, Slug: slug})

	series, err := library.ReadSeries(dir)
	if err == nil && len(series.Chapters) > 0 {
		return series, dir, nil
	}
	s.log.Debugf("no saved series in %s (%v), scraping", dir, err)
	return s.scrapeSeries(ctx, rawURL)
}

func (s *session) saveToStore(ctx context.Context, series *webtoon.Series) {
	if !s.cfg.SaveDB {
		return
	}
	db, err := store.Open(ctx, s.cfg.DBPath, s.log.With("store"))
	if err != nil {
		s.log.Warnf("database unavailable: %v", err)
		return
	}
	defer func() {
		_ = db.Close()
	}()

	if _, err := db.SaveSeries(ctx, series); err != nil {
		s.log.Warnf("could not save %s to database: %v", series.Title, err)
		return
	}
	s.log.Infof("saved %s to %s", series.Title, s.cfg.DBPath)
}

func printSeries(series *webtoon.Series) {
	fmt.Printf("Title:       %s\n", series.Title)
	fmt.Printf("Author:      %s\n", orUnknown(series.Author))
	fmt.Printf("Genre:       %s\n", orUnknown(series.Genre))
	if series.Grade != nil {
		fmt.Printf("Rating:      %.2f\n", *series.Grade)
	}
	if series.Views != "" {
		fmt.Printf("Views:       %s\n", series.Views)
	}
	if series.Subscribers != "" {
		fmt.Printf("Subscribers: %s\n", series.Subscribers)
	}
	if series.DayInfo != "" {
		fmt.Printf("Schedule:    %s\n", series.DayInfo)
	}
	fmt.Printf("Chapters:    %d\n", series.NumChapters)
}

// printBanners reports which banner layers were found and saved. A missing
// layer is only reported.
func printBanners(series *webtoon.Series, banners []string) {
	if series.BannerBgURL == "" {
		fmt.Println("Banner:      no background image found")
	}
	if series.BannerFgURL == "" {
		fmt.Println("Banner:      no foreground image found")
	}
	for _, b := range banners {
		fmt.Printf("Banner:      %s\n", b)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return webtoon.UnknownTitle
	}
	return s
}
