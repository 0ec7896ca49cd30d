package commands

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cinelake/cinelake/internal/analytics"
	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/csvio"
	"github.com/cinelake/cinelake/internal/server"
	"github.com/cinelake/cinelake/pkg/types"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the cinelake HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()
	ctx := context.Background()

	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	// Seed the in-memory snapshot from the newest partition so analytics
	// answer immediately. An empty store is fine; queries return empty
	// results until a partition is reloaded.
	mem := analytics.NewMemory()
	if date, err := latestPartitionDate(ctx, st); err == nil {
		data, err := st.Get(ctx, date)
		if err != nil {
			return fmt.Errorf("reading partition %s: %w", date, err)
		}
		recs, err := csvio.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("decoding partition %s: %w", date, err)
		}
		mem.Load(date, recs)
		logger.Info("loaded partition snapshot", "date", date, "records", len(recs))
	} else {
		logger.Warn("starting without a partition snapshot", "error", err)
	}

	// The warehouse serves analytics when enabled; otherwise the in-memory
	// snapshot does.
	var source analytics.Source = mem
	opts := []server.Option{server.WithMemory(mem), server.WithLogger(logger)}

	wh, err := newWarehouse(ctx, cfg)
	if err != nil {
		return err
	}
	if wh != nil {
		defer wh.Close()
		source = wh
		opts = append(opts, server.WithMirror(wh))
	}

	led, err := newLedger(ctx, cfg)
	if err != nil {
		return err
	}
	if led != nil {
		opts = append(opts, server.WithLedger(led))
	}

	var srvCfg types.ServerConfig
	if cfg.Server != nil {
		srvCfg = *cfg.Server
	}
	if srvCfg.Addr == "" {
		srvCfg.Addr = config.DefaultServerAddr
	}
	srv := server.New(srvCfg, source, st, opts...)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		color.Green("Server stopped gracefully")
		return nil
	}
}
