package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the Project Gutenberg catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := ctx.catalog()
			defer cat.Close()

			res, err := cat.Search(cmd.Context(), strings.Join(args, " "), page)
			if err != nil {
				return err
			}
			if ctx.json {
				return writeJSON(cmd, res)
			}
			if len(res.Books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found")
				return nil
			}

			rows := make([][]string, 0, len(res.Books))
			for _, b := range res.Books {
				rows = append(rows, []string{
					strconv.Itoa(b.ID),
					b.Title,
					strings.Join(b.AuthorNames(), "; "),
					strconv.Itoa(b.DownloadCount),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				cmd.OutOrStdout(),
				[]string{"ID", "Title", "Authors", "Downloads"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d results\n", res.Count)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	return cmd
}
