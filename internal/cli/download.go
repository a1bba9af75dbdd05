package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fideboard/internal/adapters/fide"
	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/pkg/logger"
)

var errNothingDownloaded = errors.New("no rating lists downloaded")

func newDownloadCmd(rt *runtime) *cobra.Command {
	var (
		from, to string
		dir      string
		baseURL  string
	)
	cmd := &cobra.Command{
		Use:     "download",
		Short:   "Download monthly standard rating lists",
		Example: "  fideboard download --from oct24 --to oct25",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			start, err := fide.ParseMonthCode(from)
			if err != nil {
				return err
			}
			end := model.Month(time.Now())
			if to != "" {
				if end, err = fide.ParseMonthCode(to); err != nil {
					return err
				}
			}
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			log := rt.log.Named("download")
			d := fide.NewDownloader(fide.WithBaseURL(baseURL), fide.WithDownloadLogger(log))
			out := cmd.OutOrStdout()
			codes := fide.MonthCodes(start, end)
			fetched := 0
			for _, code := range codes {
				path, err := d.Fetch(ctx, code, dir)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					log.Warn(ctx, "rating list not downloaded", logger.String("month", code), logger.Error(err))
					_, _ = fmt.Fprintf(out, "%s  failed: %v\n", code, err)
					continue
				}
				fetched++
				_, _ = fmt.Fprintf(out, "%s  %s\n", code, path)
			}
			_, _ = fmt.Fprintf(out, "downloaded %d of %d lists\n", fetched, len(codes))
			if fetched == 0 && len(codes) > 0 {
				return errNothingDownloaded
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first month code, e.g. oct24")
	cmd.Flags().StringVar(&to, "to", "", "last month code (default the current month)")
	cmd.Flags().StringVar(&dir, "dir", "historical_data", "destination directory")
	cmd.Flags().StringVar(&baseURL, "base-url", fide.DefaultBaseURL, "download host")
	_ = cmd.Flags().MarkHidden("base-url")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
