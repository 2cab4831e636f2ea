package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookreader/internal/chapter"
)

// previewChars is how much text after a heading the rank table shows.
const previewChars = 48

func newRankCommand(ctx *commandContext) *cobra.Command {
	var src sourceFlags
	var query string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show every heading candidate with its score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, text, err := ctx.loadDocument(cmd.Context(), src)
			if err != nil {
				return err
			}

			set := chapter.AnyChapter()
			if query != "" {
				id, err := chapter.ParseIdentifier(query)
				if err != nil {
					return err
				}
				set = chapter.ForIdentifier(id)
			}
			candidates := chapter.Rank(text, set)

			if ctx.json {
				return writeJSON(cmd, candidates)
			}
			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapter headings found")
				return nil
			}

			rows := make([][]string, 0, len(candidates))
			for i, c := range candidates {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(c.Score),
					strconv.Itoa(c.Start),
					c.Text,
					preview(text[c.End:]),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				cmd.OutOrStdout(),
				[]string{"#", "Score", "Offset", "Heading", "Followed by"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&query, "chapter", "c", "", "Only rank headings for this chapter")
	return cmd
}

// preview flattens the start of s onto one line.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if rs := []rune(s); len(rs) > previewChars {
		return string(rs[:previewChars]) + "…"
	}
	return s
}
