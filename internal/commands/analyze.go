package commands

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/analytics"
	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/csvio"
	"github.com/cinelake/cinelake/pkg/types"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	var (
		date string
		top  int
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report analytics over a stored partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(date, top)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "partition date (YYYY-MM-DD, default latest)")
	cmd.Flags().IntVar(&top, "top", analytics.DefaultTopN, "ranking depth for the profitability table")
	return cmd
}

func runAnalyze(date string, top int) error {
	if top < 1 {
		return fmt.Errorf("top must be at least 1, got %d", top)
	}
	if date != "" {
		if _, err := time.Parse(types.DateLayout, date); err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if date == "" {
		date, err = latestPartitionDate(ctx, st)
		if err != nil {
			return err
		}
	}

	data, err := st.Get(ctx, date)
	if err != nil {
		return fmt.Errorf("reading partition %s: %w", date, err)
	}
	recs, err := csvio.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding partition %s: %w", date, err)
	}

	printAnalytics(date, recs, top)
	return nil
}

func printAnalytics(date string, recs []types.MovieRecord, top int) {
	bold := color.New(color.Bold)

	_, _ = bold.Printf("\nSnapshot %s: %d records\n", date, len(recs))

	_, _ = bold.Println("\nRevenue trend by release year")
	trend := analytics.RevenueTrend(recs)
	if len(trend) == 0 {
		fmt.Println("  no records with known year and revenue")
	}
	for _, yr := range trend {
		fmt.Printf("  %d  %3d movies  avg revenue %s\n", yr.Year, yr.MovieCount, money(yr.AvgRevenue))
	}

	_, _ = bold.Printf("\nTop %d by profit\n", top)
	ranked := analytics.TopProfitable(recs, top)
	if len(ranked) == 0 {
		fmt.Println("  no records with known budget and revenue")
	}
	for _, m := range ranked {
		year := "----"
		if m.ReleaseYear != nil {
			year = strconv.Itoa(*m.ReleaseYear)
		}
		line := fmt.Sprintf("  %2d. %-30s %s  profit %s", m.Rank, m.Title, year, money(float64(m.Profit)))
		if m.ROI != nil {
			line += fmt.Sprintf("  roi %.2f", *m.ROI)
		}
		fmt.Println(line)
	}

	_, _ = bold.Println("\nROI by genre")
	byGenre := analytics.ROIByGenre(recs)
	if len(byGenre) == 0 {
		fmt.Println("  no records with known genre, budget, and revenue")
	}
	for _, g := range byGenre {
		fmt.Printf("  %-15s %3d movies  avg roi %5.2f  avg profit %s\n", g.Genre, g.MovieCount, g.AvgROI, money(g.AvgProfit))
	}
	fmt.Println()
}

// money renders a dollar amount compactly for terminal tables.
func money(v float64) string {
	switch {
	case v >= 1e9 || v <= -1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3 || v <= -1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
