// Package lambda wires and runs the scheduled ETL handler.
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

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

// Deps holds shared dependencies for the ETL handler.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Logger   *slog.Logger
}

// Init creates shared dependencies from environment variables.
// Reads: MOVIES_BUCKET, STORE_PREFIX, AWS_REGION, TMDB_API_KEY,
// TMDB_API_KEY_SECRET, TMDB_BASE_URL, MAX_PAGES, MAX_DETAILS, MAX_WORKERS,
// PAGE_DELAY, GLUE_DATABASE, GLUE_TABLE, TABLE_NAME, WAREHOUSE_DSN
func Init(ctx context.Context) (*Deps, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	bucket := os.Getenv("MOVIES_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("MOVIES_BUCKET environment variable required")
	}

	pcfg := pipeline.Config{}
	var err error
	if pcfg.MaxPages, err = envInt("MAX_PAGES"); err != nil {
		return nil, err
	}
	if pcfg.MaxDetails, err = envInt("MAX_DETAILS"); err != nil {
		return nil, err
	}
	if pcfg.MaxWorkers, err = envInt("MAX_WORKERS"); err != nil {
		return nil, err
	}
	if delay := os.Getenv("PAGE_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("parsing PAGE_DELAY: %w", err)
		}
		pcfg.PageDelay = d
	}

	region := os.Getenv("AWS_REGION")
	storeCfg := types.StoreConfig{
		Backend: types.StoreS3,
		Bucket:  bucket,
		Prefix:  envOrDefault("STORE_PREFIX", config.DefaultStorePrefix),
		Region:  region,
	}
	st, err := store.NewS3Store(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("creating S3 store: %w", err)
	}

	tmdbCfg := types.TMDBConfig{
		BaseURL:      os.Getenv("TMDB_BASE_URL"),
		APIKeySecret: os.Getenv("TMDB_API_KEY_SECRET"),
	}
	var secrets tmdb.SecretsAPI
	if tmdbCfg.APIKeySecret != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		secrets = secretsmanager.NewFromConfig(awsCfg)
	}
	key, err := tmdb.ResolveAPIKey(ctx, tmdbCfg, secrets)
	if err != nil {
		return nil, err
	}
	clientOpts := []tmdb.Option{tmdb.WithLogger(logger)}
	if tmdbCfg.BaseURL != "" {
		clientOpts = append(clientOpts, tmdb.WithBaseURL(tmdbCfg.BaseURL))
	}
	client := tmdb.New(key, clientOpts...)

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	if db, table := os.Getenv("GLUE_DATABASE"), os.Getenv("GLUE_TABLE"); db != "" && table != "" {
		cat, err := catalog.New(types.CatalogConfig{
			Enabled:  true,
			Database: db,
			Table:    table,
			Region:   region,
		}, storeCfg)
		if err != nil {
			return nil, fmt.Errorf("creating catalog: %w", err)
		}
		opts = append(opts, pipeline.WithCatalog(cat))
	}

	if tableName := os.Getenv("TABLE_NAME"); tableName != "" {
		led, err := ledger.New(types.LedgerConfig{
			Enabled:   true,
			TableName: tableName,
			Region:    region,
		})
		if err != nil {
			return nil, fmt.Errorf("creating ledger: %w", err)
		}
		opts = append(opts, pipeline.WithLedger(led))
	}

	// The warehouse mirror is best-effort; schema management stays with the
	// CLI, so no migration runs on cold start.
	if dsn := os.Getenv("WAREHOUSE_DSN"); dsn != "" {
		wh, err := warehouse.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to warehouse: %w", err)
		}
		opts = append(opts, pipeline.WithWarehouse(wh))
	}

	p, err := pipeline.New(client, st, pcfg, opts...)
	if err != nil {
		return nil, err
	}

	return &Deps{Pipeline: p, Logger: logger}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
