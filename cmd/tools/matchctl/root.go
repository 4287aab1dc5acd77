// cmd/tools/matchctl/root.go
package main

import (
	"github.com/spf13/cobra"
)

const defaultCatalogPath = "configs/activities.json"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Inspect the company matching engine offline",
		Long: `matchctl runs the company ranking against local files and checks the
activity catalog. It talks to no broker and no database, which makes it
useful for tuning rosters and reproducing a ranking by hand.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newRankCommand())
	cmd.AddCommand(newCatalogCommand())

	return cmd
}
