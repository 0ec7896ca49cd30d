package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/ledger"
	"github.com/cinelake/cinelake/pkg/types"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status [date]",
		Short: "Show recent snapshot runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) > 0 {
				date = args[0]
			}
			return runStatus(date, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum runs to list")
	return cmd
}

func runStatus(date string, limit int) error {
	if date != "" {
		if _, err := time.Parse(types.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	led, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	if led == nil {
		// No run history without a ledger; fall back to what the store holds.
		return showPartitions(ctx, cfg)
	}

	if date != "" {
		return showRunsForDate(ctx, led, date)
	}
	return showRecentRuns(ctx, led, limit)
}

func showRecentRuns(ctx context.Context, led *ledger.Ledger, limit int) error {
	runs, err := led.ListRuns(ctx, int32(limit))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Recent Runs:")
	fmt.Println()
	for _, r := range runs {
		printRunLine("  ", r)
	}
	fmt.Println()
	return nil
}

func showRunsForDate(ctx context.Context, led *ledger.Ledger, date string) error {
	runs, err := led.ListRunsForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("listing runs for %s: %w", date, err)
	}
	if len(runs) == 0 {
		fmt.Printf("No runs recorded for %s.\n", date)
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("Runs for %s:\n", date)
	fmt.Println()
	for _, r := range runs {
		printRunLine("  ", r)
		if r.Rejected > 0 {
			rejects, err := led.ListRejects(ctx, date, r.RunID)
			if err != nil {
				color.Yellow("    could not list rejects: %v", err)
				continue
			}
			for _, rej := range rejects {
				fmt.Printf("    reject movie %d: %s (%s)\n", rej.MovieID, rej.Reason, rej.Field)
			}
		}
	}
	fmt.Println()
	return nil
}

func printRunLine(indent string, r types.RunRecord) {
	statusStr := string(r.Status)
	switch r.Status {
	case types.RunCompleted:
		statusStr = color.GreenString(statusStr)
	case types.RunCompletedWithRejects:
		statusStr = color.YellowString(statusStr)
	case types.RunFailed:
		statusStr = color.RedString(statusStr)
	case types.RunRunning:
		statusStr = color.CyanString(statusStr)
	}

	line := fmt.Sprintf("%s%s  %s  %s  processed=%d rejected=%d",
		indent, r.Date, r.RunID, statusStr, r.Processed, r.Rejected)
	if d := r.Duration(); d > 0 {
		line += fmt.Sprintf("  (%s)", d.Round(time.Millisecond))
	}
	fmt.Println(line)
	if r.Error != "" {
		color.Red("%s  error: %s", indent, r.Error)
	}
}

func showPartitions(ctx context.Context, cfg *types.ProjectConfig) error {
	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	refs, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("listing partitions: %w", err)
	}
	if len(refs) == 0 {
		fmt.Println("No partitions stored.")
		return nil
	}

	bold := color.New(color.Bold)
	_, _ = bold.Println("Stored Partitions (no ledger configured):")
	fmt.Println()
	for _, ref := range refs {
		line := fmt.Sprintf("  %s  %s", ref.Date, ref.Key)
		if ref.Bytes > 0 {
			line += fmt.Sprintf("  %d bytes", ref.Bytes)
		}
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}
