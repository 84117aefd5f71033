package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/pixa/internal/domain"
)

type searchOptions struct {
	cursor  int
	limit   int
	refresh bool
	json    bool
}

func newSearchCmd(st *state) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search TERM...",
		Short: "Search PixaBay and print one page of results",
		Long: `Search PixaBay for TERM and print one page of results.

Results are cached locally. Use --cursor with the value printed after a
page to fetch the next one.`,
		Example: `  pixa search yellow flowers
  pixa search sunset --cursor 20 --limit 20
  pixa search cat --json | jq '.items[].large_url'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.container()
			if err != nil {
				return err
			}
			defer c.Close()

			term := strings.Join(args, " ")
			req := domain.PageRequest{Cursor: opts.cursor, Limit: opts.limit}

			search := c.Repo.Search
			if opts.refresh {
				search = c.Repo.Refresh
			}
			page, err := search(cmd.Context(), term, req)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			return writeTable(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().IntVar(&opts.cursor, "cursor", 0, "offset of the first result")
	cmd.Flags().IntVar(&opts.limit, "limit", domain.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore recently fetched pages")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")

	return cmd
}
