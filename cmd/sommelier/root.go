package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/sommelier/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sommelier",
		Short: "Vineyard question answering service",
		Long: `sommelier answers visitor questions about a vineyard's wines, club,
tasting room and events from a curated knowledge base.

Example usage:
  sommelier serve                                # Run the HTTP API (config/$ENV.yaml)
  sommelier ask "is the tasting room open today"
  sommelier classify "2022 reserve cab franc"    # Show how a question is understood`,
		Version:       version.Version + " (" + version.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newAskCmd(), newClassifyCmd())
	return root
}
