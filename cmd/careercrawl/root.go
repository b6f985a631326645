package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for careercrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "careercrawl",
		Short: "Collect job postings from company careers pages",
		Long: `careercrawl collects job postings from company websites.

For each company it finds the careers page, follows a "view openings" style
link to the job listing, infers the layout shared by the listing entries and
reads the title and description of every job page they link to.

Pages are rendered in a headless Chromium by default so that listings built
by JavaScript are visible. Use --renderer http for plain HTTP fetching.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
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
