package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/downloader"
	"github.com/brogergvhs/webtoond/internal/library"
	"github.com/brogergvhs/webtoond/internal/util"
)

func init() {
	var flags scrapeFlags

	resumeCmd := &cobra.Command{
		Use:   "resume",
		Short: "Finish the last interrupted or partially failed download of a series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.requireURL(); err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := util.InterruptContext(cmd.Context(), s.cfg.Output, func(removed int) {
				s.log.Warnf("interrupted: removed %d unfinished file(s)", removed)
			})
			defer cancel()

			series, dir, err := s.seriesFromDisk(ctx, flags.url)
			if err != nil {
				return err
			}

			pending, err := library.Pending(dir, series, s.log)
			if errors.Is(err, library.ErrNoQueue) {
				fmt.Printf("No pending download for %s.\n", series.Title)
				return nil
			}
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				if _, err := s.manager(nil).Resume(ctx, series, dir, nil); err != nil {
					return err
				}
				fmt.Println("All queued episodes are already downloaded.")
				return nil
			}
			fmt.Printf("Resuming %s: %d episode(s) left.\n", series.Title, len(pending))

			return runBatch(ctx, s, series, len(pending), func(ctx context.Context, mgr *downloader.Manager, progress downloader.ProgressFunc) (map[string]int, error) {
				return mgr.Resume(ctx, series, dir, progress)
			})
		},
	}

	flags.bind(resumeCmd)
	rootCmd.AddCommand(resumeCmd)
}
