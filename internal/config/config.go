// Package config handles loading and validation of cinelake.yaml project
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cinelake/cinelake/internal/derive"
	"github.com/cinelake/cinelake/internal/tmdb"
	"github.com/cinelake/cinelake/pkg/types"
)

// FileName is the project configuration file Load looks for.
const FileName = "cinelake.yaml"

// Defaults applied when the corresponding field is omitted.
const (
	DefaultStorePrefix = "daily_outputs"
	DefaultStoreDir    = "data"
	DefaultServerAddr  = ":8080"
)

// Load reads and parses cinelake.yaml from the given directory. Omitted
// fields are defaulted before validation; zero extraction bounds are left
// for the pipeline to default.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// PageDelay returns the configured listing-page pacing, or zero when unset
// so the pipeline default applies.
func PageDelay(cfg types.TMDBConfig) (time.Duration, error) {
	if cfg.PageDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.PageDelay)
	if err != nil {
		return 0, fmt.Errorf("tmdb.pageDelay: %w", err)
	}
	return d, nil
}

func applyDefaults(cfg *types.ProjectConfig) {
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = tmdb.DefaultBaseURL
	}
	if cfg.TMDB.APIKeyEnv == "" && cfg.TMDB.APIKeySecret == "" {
		cfg.TMDB.APIKeyEnv = tmdb.DefaultAPIKeyEnv
	}
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = types.DefaultPopularityThresholds()
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = types.StoreLocal
	}
	if cfg.Store.Prefix == "" {
		cfg.Store.Prefix = DefaultStorePrefix
	}
	if cfg.Store.Backend == types.StoreLocal && cfg.Store.Dir == "" {
		cfg.Store.Dir = DefaultStoreDir
	}
	if cfg.Server != nil && cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}

func validate(cfg *types.ProjectConfig) error {
	if cfg.TMDB.MaxPages < 0 {
		return fmt.Errorf("tmdb.maxPages must not be negative")
	}
	if cfg.TMDB.MaxDetails < 0 {
		return fmt.Errorf("tmdb.maxDetails must not be negative")
	}
	if cfg.TMDB.MaxWorkers < 0 {
		return fmt.Errorf("tmdb.maxWorkers must not be negative")
	}
	if _, err := PageDelay(cfg.TMDB); err != nil {
		return err
	}
	if r := cfg.TMDB.Retry; r != nil {
		if r.MaxAttempts < 1 {
			return fmt.Errorf("tmdb.retry.maxAttempts must be at least 1")
		}
		if r.BackoffSeconds <= 0 {
			return fmt.Errorf("tmdb.retry.backoffSeconds must be positive")
		}
	}
	if _, err := derive.NewCategorizer(cfg.Thresholds); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	switch cfg.Store.Backend {
	case types.StoreS3:
		if cfg.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the s3 backend")
		}
	case types.StoreLocal:
		if cfg.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the local backend")
		}
	default:
		return fmt.Errorf("store.backend must be s3 or local, got %q", cfg.Store.Backend)
	}

	if cfg.Catalog != nil && cfg.Catalog.Enabled {
		if cfg.Catalog.Database == "" {
			return fmt.Errorf("catalog.database is required when catalog is enabled")
		}
		if cfg.Catalog.Table == "" {
			return fmt.Errorf("catalog.table is required when catalog is enabled")
		}
		if cfg.Store.Backend != types.StoreS3 {
			return fmt.Errorf("catalog requires the s3 store backend")
		}
	}
	if cfg.Ledger != nil && cfg.Ledger.Enabled && cfg.Ledger.TableName == "" {
		return fmt.Errorf("ledger.tableName is required when ledger is enabled")
	}
	if cfg.Warehouse != nil && cfg.Warehouse.Enabled && cfg.Warehouse.DSN == "" {
		return fmt.Errorf("warehouse.dsn is required when warehouse is enabled")
	}
	return nil
}
