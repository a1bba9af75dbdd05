package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/okian/fideboard/internal/adapters/http/client"
	"github.com/okian/fideboard/internal/tui"
	"github.com/okian/fideboard/pkg/logger"
)

type serverFlags struct {
	url      string
	pageSize int
}

func (f *serverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "rankings server URL (default from api_url)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "players per page (default from default_page_size)")
}

func (f *serverFlags) resolve(rt *runtime) (*client.Client, int) {
	url := f.url
	if url == "" {
		url = rt.cfg.APIURL
	}
	size := f.pageSize
	if size == 0 {
		size = rt.cfg.DefaultPageSize
	}
	return client.New(url,
		client.WithTimeout(rt.cfg.ClientTimeout()),
		client.WithLogger(rt.log.Named("client")),
	), size
}

func newBrowseCmd(rt *runtime) *cobra.Command {
	var flags serverFlags
	cmd := &cobra.Command{
		Use:         "browse",
		Short:       "Browse the rankings in the terminal",
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, size := flags.resolve(rt)
			rt.log.Info(ctx, "browsing rankings", logger.Int("page_size", size))

			model := tui.New(ctx, c, tui.WithPageSize(size), tui.WithLogger(rt.log.Named("view")))
			_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
