package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookreader/internal/chapter"
)

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var src sourceFlags
	var query string

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the text of one chapter",
		Long:  "Print the text of one chapter. Without --chapter the opening chapter is printed, or the start of the book when it has no chapter headings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			title, text, err := ctx.loadDocument(cmd.Context(), src)
			if err != nil {
				return err
			}

			var ch chapter.Chapter
			if query == "" {
				ch = chapter.LocateDefault(text)
			} else if ch, err = chapter.LocateQuery(text, query); err != nil {
				return err
			}

			if ctx.json {
				return writeJSON(cmd, map[string]any{
					"title":    title,
					"heading":  ch.Heading,
					"start":    ch.Start,
					"end":      ch.End,
					"score":    ch.Score,
					"fallback": ch.Fallback,
					"text":     ch.Text,
				})
			}
			out := cmd.OutOrStdout()
			if ch.Fallback {
				fmt.Fprintf(out, "%s (no chapter headings, showing opening text)\n\n", title)
			} else {
				fmt.Fprintf(out, "%s: %s\n\n", title, ch.Heading)
			}
			fmt.Fprintln(out, ch.Text)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&query, "chapter", "c", "", `Chapter to print, e.g. "3", "III" or "Chapter 3"`)
	return cmd
}
