package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/webtoond/internal/config"
	"github.com/brogergvhs/webtoond/internal/store"
	"github.com/brogergvhs/webtoond/internal/ui"
)

var (
	flagDBPath string
	flagLimit  int
	dbFilter   store.Filter
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Query the local series database",
}

// withStore opens the configured database for the duration of fn.
func withStore(cmd *cobra.Command, fn func(db *store.Store) error) error {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		DBPath:       flagDBPath,
	})
	if err != nil {
		return err
	}

	db, err := store.Open(cmd.Context(), cfg.DBPath, ui.NewLogger(cfg.Debug).With("store"))
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return fn(db)
}

func printRecords(recs []store.Record) {
	if len(recs) == 0 {
		fmt.Println("No series found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE_NO\tTITLE\tAUTHOR\tGENRE\tCHAPTERS\tRATING\tSCHEDULE")
	for _, r := range recs {
		rating := "-"
		if r.Grade != nil {
			rating = strconv.FormatFloat(*r.Grade, 'f', 2, 64)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.TitleNo, r.Title, truncate(orUnknown(r.Author), 30), orUnknown(r.Genre),
			r.NumChapters, rating, r.DayInfo)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to flush table output: %v\n", err)
	}
}

func printNames(names []string) {
	for _, n := range names {
		fmt.Println(n)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	dbCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "database file (default from config)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every stored series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				recs, err := db.List(cmd.Context())
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search by title, author, genre, chapter count or rating",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				recs, err := db.Search(cmd.Context(), dbFilter)
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}
	searchCmd.Flags().StringVar(&dbFilter.Title, "title", "", "title contains")
	searchCmd.Flags().StringVar(&dbFilter.Author, "author", "", "author contains")
	searchCmd.Flags().StringVar(&dbFilter.Genre, "genre", "", "genre contains")
	searchCmd.Flags().IntVar(&dbFilter.MinChapters, "min-chapters", 0, "at least this many chapters")
	searchCmd.Flags().Float64Var(&dbFilter.MinGrade, "min-rating", 0, "at least this rating")

	topCmd := &cobra.Command{
		Use:   "top",
		Short: "Highest rated series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				recs, err := db.TopRated(cmd.Context(), flagLimit)
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Most recently updated series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				recs, err := db.Recent(cmd.Context(), flagLimit)
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}

	for _, c := range []*cobra.Command{topCmd, recentCmd} {
		c.Flags().IntVar(&flagLimit, "limit", 10, "number of series to show")
	}

	dayCmd := &cobra.Command{
		Use:   "day <day>",
		Short: "Series published on a day (e.g. MON, or Completed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(db *store.Store) error {
				recs, err := db.ByDay(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRecords(recs)
				return nil
			})
		},
	}

	genresCmd := &cobra.Command{
		Use:   "genres",
		Short: "List stored genres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				names, err := db.Genres(cmd.Context())
				if err != nil {
					return err
				}
				printNames(names)
				return nil
			})
		},
	}

	authorsCmd := &cobra.Command{
		Use:   "authors",
		Short: "List stored authors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(db *store.Store) error {
				names, err := db.Authors(cmd.Context())
				if err != nil {
					return err
				}
				printNames(names)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <title_no>",
		Short: "Show one series with its chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(db *store.Store) error {
				rec, err := db.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printSeries(&rec.Series)
				fmt.Printf("URL:         %s\n", rec.URL)
				fmt.Printf("Updated:     %s\n\n", rec.LastUpdated.Format("2006-01-02 15:04"))
				for _, c := range rec.Chapters {
					fmt.Printf("  Episode %s: %s\n", c.EpisodeNo, c.Title)
				}
				return nil
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <title_no>",
		Short: "Remove a series and its chapters from the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(db *store.Store) error {
				n, err := db.Delete(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if n == 0 {
					return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
				}
				fmt.Printf("Deleted series %s\n", args[0])
				return nil
			})
		},
	}

	dbCmd.AddCommand(listCmd, searchCmd, topCmd, recentCmd, dayCmd, genresCmd, authorsCmd, showCmd, deleteCmd)
	rootCmd.AddCommand(dbCmd)
}
