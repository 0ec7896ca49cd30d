package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/csvio"
	"github.com/cinelake/cinelake/pkg/types"
)

// NewLoadCmd creates the load command.
func NewLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <date>",
		Short: "Replay a stored partition into the warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args[0])
		},
	}
}

func runLoad(date string) error {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Warehouse == nil || !cfg.Warehouse.Enabled {
		return errors.New("warehouse is not enabled in cinelake.yaml")
	}

	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	wh, err := newWarehouse(ctx, cfg)
	if err != nil {
		return err
	}
	defer wh.Close()

	data, err := st.Get(ctx, date)
	if err != nil {
		return fmt.Errorf("reading partition %s: %w", date, err)
	}
	recs, err := csvio.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding partition %s: %w", date, err)
	}

	if err := wh.LoadPartition(ctx, date, recs); err != nil {
		return fmt.Errorf("loading warehouse: %w", err)
	}

	color.Green("✓ Loaded %d records from partition %s into the warehouse", len(recs), date)
	return nil
}
