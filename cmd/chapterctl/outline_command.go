package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookreader/internal/chapter"
)

func newOutlineCommand(ctx *commandContext) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "outline",
		Short: "List the chapters of a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, text, err := ctx.loadDocument(cmd.Context(), src)
			if err != nil {
				return err
			}
			headings := chapter.Outline(text)

			if ctx.json {
				return writeJSON(cmd, map[string]any{"title": title, "chapters": headings})
			}
			if len(headings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no chapter headings found\n", title)
				return nil
			}

			rows := make([][]string, 0, len(headings))
			for _, h := range headings {
				rows = append(rows, []string{strconv.Itoa(h.Number), h.Label, strconv.Itoa(h.Start), strconv.Itoa(h.Score)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), title)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				cmd.OutOrStdout(),
				[]string{"Chapter", "Heading", "Offset", "Score"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
