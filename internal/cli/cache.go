package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmcdole/pixa/internal/domain"
	"github.com/mmcdole/pixa/internal/tui/styles"
)

func newCacheCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local image cache",
	}

	cmd.AddCommand(newCacheListCmd(st))
	cmd.AddCommand(newCacheStatsCmd(st))
	cmd.AddCommand(newCacheClearCmd(st))

	return cmd
}

func newCacheListCmd(st *state) *cobra.Command {
	var (
		cursor int
		limit  int
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list [TERM]",
		Short: "List cached images whose search term contains TERM",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.container()
			if err != nil {
				return err
			}
			defer c.Close()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			var page domain.Page
			if all {
				page, err = collectPages(cmd.Context(), c.Store.Query(term), limit)
			} else {
				page, err = c.Repo.Cached(cmd.Context(), term, domain.PageRequest{Cursor: cursor, Limit: limit})
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			return writeTable(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "offset of the first result")
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&all, "all", false, "walk every page from the start")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("all", "cursor")

	return cmd
}

// collectPages reads src to the end, limit items at a time, into one page
func collectPages(ctx context.Context, src domain.PageSource, limit int) (domain.Page, error) {
	var out domain.Page
	for page, err := range domain.Pages(ctx, src, limit) {
		if err != nil {
			return domain.Page{}, err
		}
		out.Items = append(out.Items, page.Items...)
	}
	out.NextCursor = len(out.Items)
	return out, nil
}

func newCacheStatsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and cached search terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := st.container()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			n, err := c.Store.Count(ctx)
			if err != nil {
				return err
			}
			terms, err := c.Store.Terms(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			path := st.cfg.Cache.Path
			if path == "" {
				path = "(in memory)"
			}
			fmt.Fprintf(out, "%s %s\n", styles.DimStyle.Render("driver:"), st.cfg.Cache.Driver)
			fmt.Fprintf(out, "%s %s\n", styles.DimStyle.Render("path:  "), path)
			fmt.Fprintf(out, "%s %d\n", styles.DimStyle.Render("images:"), n)
			fmt.Fprintf(out, "%s %d\n", styles.DimStyle.Render("terms: "), len(terms))
			for _, t := range terms {
				fmt.Fprintf(out, "  %s\n", t)
			}
			return nil
		},
	}
}

func newCacheClearCmd(st *state) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "Delete all cached images? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			c, err := st.container()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Repo.ClearCache(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Cache cleared\n", styles.SuccessStyle.Render("✓"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
