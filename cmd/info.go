package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	var flags scrapeFlags

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Scrape a series: metadata, chapter list and banners",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.requireURL(); err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, flags.options())
			if err != nil {
				return err
			}
			defer s.Close()

			series, dir, err := s.scrapeSeries(ctx, flags.url)
			if err != nil {
				return err
			}

			banners := s.manager(nil).DownloadBanners(ctx, series, dir)
			s.saveToStore(ctx, series)

			printSeries(series)
			printBanners(series, banners)
			return nil
		},
	}

	flags.bind(infoCmd)
	rootCmd.AddCommand(infoCmd)
}
