package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/fideboard/internal/adapters/fide"
	"github.com/okian/fideboard/internal/adapters/repository"
)

var errSeedSource = errors.New("seed needs --file or --dir")

func newSeedCmd(rt *runtime) *cobra.Command {
	var (
		file      string
		date      string
		dir       string
		db        string
		minRating int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load rating list files into the SQLite store",
		Example: `  fideboard seed --dir historical_data
  fideboard seed --file players_list.txt --date 2025-10-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if db == "" {
				db = rt.cfg.SQLitePath
			}
			if minRating == 0 {
				minRating = rt.cfg.MinRating
			}

			var files []fide.ListFile
			switch {
			case file != "":
				d, err := listDate(file, date)
				if err != nil {
					return err
				}
				files = []fide.ListFile{{Path: file, Date: d}}
			case dir != "":
				found, err := fide.FindLists(dir)
				if err != nil {
					return err
				}
				files = found
			default:
				return errSeedSource
			}

			store, err := repository.OpenSQLite(ctx, db)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			seeder := fide.NewSeeder(store,
				fide.WithMinRating(minRating),
				fide.WithSeedLogger(rt.log.Named("seed")),
			)
			reports, err := seeder.Seed(ctx, files)
			out := cmd.OutOrStdout()
			for _, r := range reports {
				_, _ = fmt.Fprintf(out, "%s  %s stored, %s duplicates, %s new players, %s below %d\n",
					r.Date.Format("Jan 2006"),
					humanize.Comma(int64(r.Result.Stored)),
					humanize.Comma(int64(r.Result.Duplicates)),
					humanize.Comma(int64(r.Result.Players)),
					humanize.Comma(int64(r.Summary.SkippedLowRating)), minRating)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "seeded %d lists into %s\n", len(reports), db)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "one rating list file")
	cmd.Flags().StringVar(&date, "date", "", "month of --file as YYYY-MM-DD (default from the file name)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory of standard_<mon><yy>frl.txt files")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database (default from sqlite_path)")
	cmd.Flags().IntVar(&minRating, "min-rating", 0, "rating new players need (default from min_rating)")
	cmd.MarkFlagsMutuallyExclusive("file", "dir")
	return cmd
}

func listDate(path, date string) (time.Time, error) {
	if date == "" {
		return fide.DateFromFileName(path)
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
