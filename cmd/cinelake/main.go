package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cinelake",
		Short: "Daily movie-metadata lake built on the TMDB API",
		Long: `Cinelake snapshots the TMDB popular listing once a day, enriches it with
per-movie detail, screens the batch against the record schema, and lands a
CSV partition in the store. Stored partitions feed the analytics queries,
the Glue catalog, the DynamoDB run ledger, and the Postgres warehouse.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewRunCmd(),
		commands.NewBackfillCmd(),
		commands.NewAnalyzeCmd(),
		commands.NewLoadCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
