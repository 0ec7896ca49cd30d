package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/config"
)

// NewBackfillCmd creates the backfill command.
func NewBackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill <start-date> [end-date]",
		Short: "Run snapshot cycles over an inclusive date range",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := args[0]
			end := start
			if len(args) == 2 {
				end = args[1]
			}
			return runBackfill(start, end)
		},
	}
}

func runBackfill(start, end string) error {
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if to.Before(from) {
		return fmt.Errorf("end date %s is before start date %s", end, start)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	p, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var completed, failed int
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		color.Cyan("Running snapshot for %s...\n", date)

		run, runErr := p.Run(ctx, date)
		printRunSummary(run)
		if runErr != nil {
			// Dates are independent snapshots, so one failure does not
			// stop the rest of the range.
			failed++
			if ctx.Err() != nil {
				return fmt.Errorf("backfill interrupted: %w", ctx.Err())
			}
			continue
		}
		completed++
	}

	bold := color.New(color.Bold)
	fmt.Println()
	_, _ = bold.Printf("Backfill finished: %d completed, %d failed\n", completed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, completed+failed)
	}
	return nil
}
