package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/chapters"
	"github.com/brogergvhs/webtoond/internal/downloader"
	"github.com/brogergvhs/webtoond/internal/library"
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/util"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

var downloadFlags struct {
	scrapeFlags

	// selection
	episode string
	rng     string
	list    string
	pick    bool

	// runtime
	imageWorkers   int
	chapterWorkers int
	dryRun         bool
	noComments     bool
	noNLP          bool
	cbz            bool
}

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download episodes of a series. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	downloadFlags.bind(downloadCmd)

	// selection
	downloadCmd.Flags().StringVar(&downloadFlags.episode, "episode", "", "download a single episode number (e.g. 12)")
	downloadCmd.Flags().StringVar(&downloadFlags.rng, "range", "", "download an inclusive range of episode numbers (e.g. 5-12)")
	downloadCmd.Flags().StringVar(&downloadFlags.list, "list", "", "download specific episode numbers (e.g. 1,3,5)")
	downloadCmd.Flags().BoolVar(&downloadFlags.pick, "pick", false, "choose episodes interactively")

	// runtime
	downloadCmd.Flags().IntVar(&downloadFlags.imageWorkers, "image-workers", 0, "parallel image downloads per episode")
	downloadCmd.Flags().IntVar(&downloadFlags.chapterWorkers, "chapter-workers", 0, "parallel episode downloads")
	downloadCmd.Flags().BoolVar(&downloadFlags.dryRun, "dry-run", false, "show what would be downloaded, don't download")
	downloadCmd.Flags().BoolVar(&downloadFlags.noComments, "no-comments", false, "skip reader comments")
	downloadCmd.Flags().BoolVar(&downloadFlags.noNLP, "no-nlp", false, "use the plain comment summary")
	downloadCmd.Flags().BoolVar(&downloadFlags.cbz, "cbz", false, "also pack each episode into a CBZ archive")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	f := &downloadFlags
	if err := f.requireURL(); err != nil {
		return err
	}

	opts := f.options()
	opts.ImageWorkers = f.imageWorkers
	opts.ChapterWorkers = f.chapterWorkers
	opts.NoComments = f.noComments
	opts.NoNLP = f.noNLP
	opts.CBZ = f.cbz

	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := util.InterruptContext(cmd.Context(), s.cfg.Output, func(removed int) {
		s.log.Warnf("interrupted: removed %d unfinished file(s); run `webtoond resume` to continue", removed)
	})
	defer cancel()

	series, dir, err := s.scrapeSeries(ctx, f.url)
	if err != nil {
		return err
	}

	printSeries(series)
	if !f.dryRun {
		banners := s.manager(nil).DownloadBanners(ctx, series, dir)
		s.saveToStore(ctx, series)
		printBanners(series, banners)
	}
	fmt.Println()

	done := library.LoadDownloaded(dir, s.log)
	var fresh []*webtoon.Chapter
	for _, c := range series.Chapters {
		if !done.Has(c.EpisodeNo) {
			fresh = append(fresh, c)
		}
	}
	if skipped := len(series.Chapters) - len(fresh); skipped > 0 {
		fmt.Printf("Skipping %d already downloaded episode(s).\n", skipped)
	}

	var selected []*webtoon.Chapter
	if f.pick {
		selected, err = pickChapters(fresh)
	} else {
		selected, err = chapters.Filter(fresh, f.episode, f.rng, f.list)
	}
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Println("Nothing to download.")
		return nil
	}

	if f.dryRun {
		fmt.Printf("Dry-run: %d episodes selected.\n\n", len(selected))
		for i, ch := range selected {
			fmt.Printf("%3d) Episode %s: %s\n    %s\n", i+1, ch.EpisodeNo, ch.Title, ch.URL)
		}
		return nil
	}

	return runBatch(ctx, s, series, len(selected), func(ctx context.Context, mgr *downloader.Manager, progress downloader.ProgressFunc) (map[string]int, error) {
		return mgr.DownloadSeriesChapters(ctx, series, selected, dir, progress), nil
	})
}

// batchFunc runs one download batch on mgr, reporting through progress.
type batchFunc func(ctx context.Context, mgr *downloader.Manager, progress downloader.ProgressFunc) (map[string]int, error)

// runBatch drives a batch of total episodes behind progress bars and prints
// the summary.
func runBatch(ctx context.Context, s *session, series *webtoon.Series, total int, run batchFunc) error {
	pm := ui.NewProgressManager()
	mgr := s.manager(pm)

	overall := pm.Overall(total)
	onProgress := func(p downloader.Progress) {
		overall.Update(p.CompletedChapters+p.FailedChapters, p.TotalChapters, 0)
	}

	start := time.Now()
	results, err := run(ctx, mgr, onProgress)
	overall.MarkDone()
	pm.Close()
	if err != nil {
		return err
	}

	failed := 0
	for _, n := range results {
		if n == 0 {
			failed++
		}
	}

	fmt.Println()
	fmt.Println("Download Summary:")
	fmt.Printf("Episodes: %d (%d failed)\n", mgr.Stats.TotalChapters.Load(), mgr.Stats.FailedChapters.Load())
	fmt.Printf("Images:   %d (%d failed)\n", mgr.Stats.TotalImages.Load(), mgr.Stats.FailedImages.Load())
	fmt.Printf("Data:     %s\n", util.Human(mgr.Stats.TotalBytes.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))

	if failed > 0 || ctx.Err() != nil {
		fmt.Printf("\n%d episode(s) incomplete; run `webtoond resume --url %s` to retry.\n", failed, series.URL)
		return nil
	}
	fmt.Println("\nAll done.")
	return nil
}

// pickChapters lists chapters newest first and reads a selection such as
// "1,3-5" or "all".
func pickChapters(all []*webtoon.Chapter) ([]*webtoon.Chapter, error) {
	if len(all) == 0 {
		return nil, nil
	}

	listed := chapters.NewestFirst(all)
	for i, ch := range listed {
		fmt.Printf("%3d. Episode %s: %s\n", i+1, ch.EpisodeNo, ch.Title)
	}
	fmt.Println()

	prompt := promptui.Prompt{
		Label: "Episodes to download (e.g. 1,3-5 or all)",
		Validate: func(in string) error {
			_, err := chapters.ParsePositions(in, len(listed))
			return err
		},
	}
	in, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled")
	}

	positions, err := chapters.ParsePositions(in, len(listed))
	if err != nil {
		return nil, err
	}
	out := make([]*webtoon.Chapter, 0, len(positions))
	for _, p := range positions {
		out = append(out, listed[p])
	}
	return out, nil
}
