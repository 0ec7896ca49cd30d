package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/pkg/types"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one snapshot pipeline cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "snapshot date (YYYY-MM-DD, default today UTC)")
	return cmd
}

func runSnapshot(date string) error {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	color.Cyan("Running snapshot for %s...\n", date)

	run, runErr := p.Run(ctx, date)
	printRunSummary(run)
	if runErr != nil {
		return fmt.Errorf("snapshot run failed: %w", runErr)
	}
	return nil
}

func printRunSummary(run types.RunRecord) {
	fmt.Println()
	switch run.Status {
	case types.RunCompleted:
		color.Green("✓ Run %s completed", run.RunID)
	case types.RunCompletedWithRejects:
		color.Yellow("✓ Run %s completed with %d rejected records", run.RunID, run.Rejected)
	default:
		color.Red("✗ Run %s failed: %s", run.RunID, run.Error)
	}

	fmt.Printf("  %-12s %d\n", "Extracted:", run.Extracted)
	fmt.Printf("  %-12s %d\n", "Enriched:", run.Enriched)
	fmt.Printf("  %-12s %d\n", "Processed:", run.Processed)
	fmt.Printf("  %-12s %d\n", "Rejected:", run.Rejected)
	if run.PartitionKey != "" {
		fmt.Printf("  %-12s %s\n", "Partition:", run.PartitionKey)
	}
	if d := run.Duration(); d > 0 {
		fmt.Printf("  %-12s %s\n", "Duration:", d.Round(time.Millisecond))
	}
}
