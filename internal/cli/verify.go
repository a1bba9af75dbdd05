package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/fideboard/internal/verify"
)

// maxListedViolations caps how many violations are printed.
const maxListedViolations = 20

func newVerifyCmd(rt *runtime) *cobra.Command {
	var flags serverFlags
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Walk every page and sort order of a server and check the results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, size := flags.resolve(rt)
			rep, err := verify.Run(cmd.Context(), c, verify.Config{PageSize: size, Logger: rt.log.Named("verify")})
			if err != nil && !errors.Is(err, verify.ErrViolations) {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s ranked players, %d per page\n", humanize.Comma(int64(rep.Total)), size)
			for _, s := range rep.Sorts {
				_, _ = fmt.Fprintf(out, "  %-11s %-4s %4d pages %s\n",
					s.Sort.Field, s.Sort.Direction, s.Pages, s.Took.Round(time.Millisecond))
			}
			if rep.OK() {
				_, _ = fmt.Fprintln(out, "all checks passed")
				return nil
			}
			_, _ = fmt.Fprintf(out, "%d violations:\n", len(rep.Violations))
			for i, v := range rep.Violations {
				if i == maxListedViolations {
					_, _ = fmt.Fprintf(out, "  ... and %d more\n", len(rep.Violations)-i)
					break
				}
				_, _ = fmt.Fprintf(out, "  %s\n", v)
			}
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
