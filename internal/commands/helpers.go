// Package commands implements the CLI subcommands for the cinelake binary.
package commands

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/cinelake/cinelake/internal/catalog"
	"github.com/cinelake/cinelake/internal/config"
	"github.com/cinelake/cinelake/internal/ledger"
	"github.com/cinelake/cinelake/internal/pipeline"
	"github.com/cinelake/cinelake/internal/store"
	"github.com/cinelake/cinelake/internal/tmdb"
	"github.com/cinelake/cinelake/internal/warehouse"
	"github.com/cinelake/cinelake/pkg/types"
)

// newStore creates the configured partition store.
func newStore(cfg *types.ProjectConfig) (store.Store, error) {
	switch cfg.Store.Backend {
	case types.StoreS3:
		st, err := store.NewS3Store(cfg.Store)
		if err != nil {
			return nil, err
		}
		return st, nil
	case types.StoreLocal:
		st, err := store.NewLocalStore(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// newLedger creates the run ledger, or nil when the section is absent or
// disabled.
func newLedger(ctx context.Context, cfg *types.ProjectConfig) (*ledger.Ledger, error) {
	if cfg.Ledger == nil || !cfg.Ledger.Enabled {
		return nil, nil
	}
	led, err := ledger.New(*cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("creating ledger: %w", err)
	}
	if cfg.Ledger.CreateTable {
		if err := led.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("ensuring ledger table: %w", err)
		}
	}
	return led, nil
}

// newWarehouse connects to the Postgres warehouse and applies the schema, or
// returns nil when the section is absent or disabled.
func newWarehouse(ctx context.Context, cfg *types.ProjectConfig) (*warehouse.Warehouse, error) {
	if cfg.Warehouse == nil || !cfg.Warehouse.Enabled {
		return nil, nil
	}
	wh, err := warehouse.New(ctx, cfg.Warehouse.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to warehouse: %w", err)
	}
	if err := wh.Migrate(ctx); err != nil {
		wh.Close()
		return nil, fmt.Errorf("migrating warehouse: %w", err)
	}
	return wh, nil
}

// newTMDBClient resolves the API key and builds the TMDB client.
func newTMDBClient(ctx context.Context, cfg *types.ProjectConfig) (*tmdb.Client, error) {
	var secrets tmdb.SecretsAPI
	if cfg.TMDB.APIKeySecret != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		secrets = secretsmanager.NewFromConfig(awsCfg)
	}
	key, err := tmdb.ResolveAPIKey(ctx, cfg.TMDB, secrets)
	if err != nil {
		return nil, err
	}

	opts := []tmdb.Option{tmdb.WithBaseURL(cfg.TMDB.BaseURL)}
	if cfg.TMDB.Retry != nil {
		opts = append(opts, tmdb.WithRetryPolicy(*cfg.TMDB.Retry))
	}
	return tmdb.New(key, opts...), nil
}

// pipelineConfig maps project configuration onto pipeline bounds.
func pipelineConfig(cfg *types.ProjectConfig) (pipeline.Config, error) {
	delay, err := config.PageDelay(cfg.TMDB)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		MaxPages:   cfg.TMDB.MaxPages,
		MaxDetails: cfg.TMDB.MaxDetails,
		MaxWorkers: cfg.TMDB.MaxWorkers,
		PageDelay:  delay,
		Thresholds: cfg.Thresholds,
	}, nil
}

// latestPartitionDate returns the date of the newest stored partition.
func latestPartitionDate(ctx context.Context, st store.Store) (string, error) {
	refs, err := st.List(ctx)
	if err != nil {
		return "", fmt.Errorf("listing partitions: %w", err)
	}
	if len(refs) == 0 {
		return "", errors.New("no partitions in store, run a snapshot first")
	}
	return refs[len(refs)-1].Date, nil
}

// buildPipeline wires the full pipeline from project configuration. The
// returned cleanup closes the warehouse pool when one was opened.
func buildPipeline(ctx context.Context, cfg *types.ProjectConfig) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	client, err := newTMDBClient(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	st, err := newStore(cfg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating store: %w", err)
	}
	pcfg, err := pipelineConfig(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	var opts []pipeline.Option
	if cfg.Catalog != nil && cfg.Catalog.Enabled {
		cat, err := catalog.New(*cfg.Catalog, cfg.Store)
		if err != nil {
			return nil, cleanup, fmt.Errorf("creating catalog: %w", err)
		}
		opts = append(opts, pipeline.WithCatalog(cat))
	}
	led, err := newLedger(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if led != nil {
		opts = append(opts, pipeline.WithLedger(led))
	}
	wh, err := newWarehouse(ctx, cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if wh != nil {
		cleanup = wh.Close
		opts = append(opts, pipeline.WithWarehouse(wh))
	}

	p, err := pipeline.New(client, st, pcfg, opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return p, cleanup, nil
}
