package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "chapterctl",
		Short:         "Find chapters in public-domain books",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	gutendex := os.Getenv("GUTENDEX_URL")
	if gutendex == "" {
		gutendex = "https://gutendex.com"
	}
	rootCmd.PersistentFlags().StringVar(&ctx.gutendexURL, "gutendex", gutendex, "Gutendex API base URL")
	rootCmd.PersistentFlags().DurationVar(&ctx.timeout, "timeout", 30*time.Second, "Network timeout")
	rootCmd.PersistentFlags().BoolVar(&ctx.json, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(newLocateCommand(ctx))
	rootCmd.AddCommand(newRankCommand(ctx))
	rootCmd.AddCommand(newOutlineCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))

	return rootCmd
}
