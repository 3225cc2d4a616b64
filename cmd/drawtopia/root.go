package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for drawtopia.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawtopia",
		Short: "Mark up and measure PDF documents",
		Long: `drawtopia marks up PDF documents from the command line.

Markup scripts select tools and colours, draw strokes, shapes and
measurements (area, perimeter, length, angle, counters) on pages, and
export each page as PNG or the whole document as a PDF with embedded
annotations. Every run is recorded in a local journal.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnnotateCmd())
	cmd.AddCommand(NewInfoCmd())
	cmd.AddCommand(NewMeasureCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
