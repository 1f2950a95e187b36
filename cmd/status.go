package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/library"
)

func init() {
	var flags scrapeFlags

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show how much of a series is downloaded",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.requireURL(); err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), flags.options())
			if err != nil {
				return err
			}
			defer s.Close()

			series, dir, err := s.seriesFromDisk(cmd.Context(), flags.url)
			if err != nil {
				return err
			}

			st := library.Inspect(dir, series, s.log)
			fmt.Printf("Series:     %s\n", series.Title)
			fmt.Printf("Folder:     %s\n", dir)
			fmt.Printf("Episodes:   %d\n", st.TotalChapters)
			fmt.Printf("Downloaded: %d (%.1f%%)\n", st.DownloadedChapters, st.Percent())
			switch {
			case st.Complete:
				fmt.Println("Pending:    none, every episode is downloaded")
			case st.PendingQueue:
				fmt.Printf("Pending:    %d queued episode(s); run `webtoond resume` to continue\n", st.QueuedChapters)
			default:
				fmt.Println("Pending:    none")
			}
			return nil
		},
	}

	flags.bind(statusCmd)
	rootCmd.AddCommand(statusCmd)
}
