// Package pipeline orchestrates one daily snapshot run: extract the popular
// listing from TMDB, enrich it with per-movie detail lookups, clean and
// screen the batch, then land the partition in the store while keeping the
// catalog, run ledger, and warehouse mirror in step.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cinelake/cinelake/internal/csvio"
	"github.com/cinelake/cinelake/internal/derive"
	"github.com/cinelake/cinelake/internal/schema"
	"github.com/cinelake/cinelake/internal/store"
	"github.com/cinelake/cinelake/internal/tmdb"
	"github.com/cinelake/cinelake/internal/transform"
	"github.com/cinelake/cinelake/pkg/types"
)

// Extraction and enrichment defaults, matching the upstream API's comfort
// zone for a daily batch.
const (
	DefaultMaxPages   = 5
	DefaultMaxDetails = 50
	DefaultMaxWorkers = 5
	DefaultPageDelay  = 500 * time.Millisecond
)

// MovieAPI is the slice of the TMDB client the pipeline consumes.
type MovieAPI interface {
	Popular(ctx context.Context, page int) (*tmdb.PopularPage, error)
	Detail(ctx context.Context, movieID int64) (*tmdb.Detail, error)
}

// Catalog registers stored partitions with an external metastore.
type Catalog interface {
	EnsureTable(ctx context.Context) error
	RegisterPartition(ctx context.Context, ref types.PartitionRef) error
}

// RunLedger records run lifecycle and per-record rejects. Together with the
// catalog it is the system of record for a run: failures here fail the run.
type RunLedger interface {
	PutRun(ctx context.Context, run types.RunRecord) error
	UpdateRun(ctx context.Context, run types.RunRecord) error
	PutRejects(ctx context.Context, rejects []types.RejectRecord) error
}

// Mirror receives a best-effort copy of each snapshot and run outcome. A
// mirror failure degrades the run to a warning; the partition store and
// ledger stay authoritative and the mirror can be reloaded later.
type Mirror interface {
	LoadPartition(ctx context.Context, date string, recs []types.MovieRecord) error
	RecordRun(ctx context.Context, run types.RunRecord) error
}

// Config bounds extraction and enrichment for one run.
type Config struct {
	// MaxPages caps how many popular-listing pages are fetched.
	MaxPages int
	// MaxDetails caps how many movies are kept for detail enrichment.
	// Listings beyond the cap are dropped from the batch.
	MaxDetails int
	// MaxWorkers bounds concurrent detail lookups.
	MaxWorkers int
	// PageDelay paces consecutive listing-page fetches.
	PageDelay time.Duration
	// Thresholds drive popularity categorization; empty means the
	// built-in Low/Medium/High table.
	Thresholds []types.PopularityThreshold
}

func (c *Config) applyDefaults() {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.MaxDetails <= 0 {
		c.MaxDetails = DefaultMaxDetails
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.PageDelay <= 0 {
		c.PageDelay = DefaultPageDelay
	}
	if len(c.Thresholds) == 0 {
		c.Thresholds = types.DefaultPopularityThresholds()
	}
}

// Pipeline runs the extract-enrich-transform-load cycle for a snapshot date.
type Pipeline struct {
	api       MovieAPI
	store     store.Store
	cfg       Config
	cat       *derive.Categorizer
	catalog   Catalog
	ledger    RunLedger
	warehouse Mirror
	logger    *slog.Logger
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithCatalog registers stored partitions with the given metastore.
func WithCatalog(c Catalog) Option {
	return func(p *Pipeline) { p.catalog = c }
}

// WithLedger records run lifecycle and rejects in the given ledger.
func WithLedger(l RunLedger) Option {
	return func(p *Pipeline) { p.ledger = l }
}

// WithWarehouse mirrors snapshots and run outcomes to the given warehouse.
func WithWarehouse(m Mirror) Option {
	return func(p *Pipeline) { p.warehouse = m }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New builds a pipeline around the movie API and partition store. Catalog,
// ledger, and warehouse are optional and attached via options.
func New(api MovieAPI, st store.Store, cfg Config, opts ...Option) (*Pipeline, error) {
	if api == nil {
		return nil, errors.New("pipeline: movie api is required")
	}
	if st == nil {
		return nil, errors.New("pipeline: partition store is required")
	}
	cfg.applyDefaults()
	cat, err := derive.NewCategorizer(cfg.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	p := &Pipeline{
		api:    api,
		store:  st,
		cfg:    cfg,
		cat:    cat,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes one snapshot run for the given date (YYYY-MM-DD). The
// returned RunRecord reflects the final state even when err is non-nil.
//
// Validation rejects never abort a run; they are counted, recorded in the
// ledger, and the surviving records proceed. A run that produces zero valid
// records completes without writing a partition.
func (p *Pipeline) Run(ctx context.Context, date string) (*types.RunRecord, error) {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return nil, fmt.Errorf("pipeline: invalid snapshot date %q: %w", date, err)
	}

	run := &types.RunRecord{
		RunID:     ulid.Make().String(),
		Date:      date,
		Status:    types.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With("runId", run.RunID, "date", date)
	logger.Info("starting snapshot run")

	if p.ledger != nil {
		if err := p.ledger.PutRun(ctx, *run); err != nil {
			return run, p.finalize(ctx, logger, run, fmt.Errorf("recording run start: %w", err))
		}
	}

	listings, err := p.extract(ctx, logger)
	if err != nil {
		return run, p.finalize(ctx, logger, run, fmt.Errorf("extracting listings: %w", err))
	}
	run.Extracted = len(listings)
	if len(listings) == 0 {
		return run, p.finalize(ctx, logger, run, errors.New("extracting listings: no movies fetched"))
	}

	movies := p.enrich(ctx, logger, listings)
	for _, m := range movies {
		if m.Detail != nil {
			run.Enriched++
		}
	}

	records := transform.Clean(movies, p.cat)
	valid, verrs := schema.Screen(records)
	run.Processed = len(valid)
	run.Rejected = len(verrs)
	if len(verrs) > 0 {
		logger.Warn("screening rejected records", "rejected", len(verrs), "kept", len(valid))
		if p.ledger != nil {
			if err := p.ledger.PutRejects(ctx, rejectRecords(run, verrs)); err != nil {
				return run, p.finalize(ctx, logger, run, fmt.Errorf("recording rejects: %w", err))
			}
		}
	}

	if len(valid) == 0 {
		logger.Warn("no records survived screening, skipping partition write")
	} else {
		var buf bytes.Buffer
		if err := csvio.Encode(&buf, valid); err != nil {
			return run, p.finalize(ctx, logger, run, fmt.Errorf("encoding partition: %w", err))
		}
		ref, err := p.store.Put(ctx, date, buf.Bytes())
		if err != nil {
			return run, p.finalize(ctx, logger, run, fmt.Errorf("storing partition: %w", err))
		}
		run.PartitionKey = ref.Key
		logger.Info("partition stored", "key", ref.Key, "bytes", ref.Bytes)

		if p.catalog != nil {
			if err := p.catalog.EnsureTable(ctx); err != nil {
				return run, p.finalize(ctx, logger, run, fmt.Errorf("ensuring catalog table: %w", err))
			}
			if err := p.catalog.RegisterPartition(ctx, ref); err != nil {
				return run, p.finalize(ctx, logger, run, fmt.Errorf("registering partition: %w", err))
			}
		}
		if p.warehouse != nil {
			if err := p.warehouse.LoadPartition(ctx, date, valid); err != nil {
				logger.Warn("warehouse mirror load failed", "error", err)
			}
		}
	}

	run.Status = types.RunCompleted
	if run.Rejected > 0 {
		run.Status = types.RunCompletedWithRejects
	}
	if err := p.finalize(ctx, logger, run, nil); err != nil {
		return run, err
	}
	logger.Info("snapshot run finished",
		"status", run.Status,
		"extracted", run.Extracted,
		"enriched", run.Enriched,
		"processed", run.Processed,
		"rejected", run.Rejected,
	)
	return run, nil
}

// finalize stamps the terminal state on the run and flushes it to the
// ledger and mirror. When the run already failed, bookkeeping errors are
// logged rather than allowed to mask the primary failure.
func (p *Pipeline) finalize(ctx context.Context, logger *slog.Logger, run *types.RunRecord, runErr error) error {
	now := time.Now().UTC()
	run.CompletedAt = &now
	if runErr != nil {
		run.Status = types.RunFailed
		run.Error = runErr.Error()
		logger.Error("snapshot run failed", "error", runErr)
	}
	if p.ledger != nil {
		if err := p.ledger.UpdateRun(ctx, *run); err != nil {
			if runErr != nil {
				logger.Warn("updating run ledger failed", "error", err)
			} else {
				return fmt.Errorf("updating run ledger: %w", err)
			}
		}
	}
	if p.warehouse != nil {
		if err := p.warehouse.RecordRun(ctx, *run); err != nil {
			logger.Warn("mirroring run record failed", "error", err)
		}
	}
	return runErr
}

// extract walks the popular listing page by page, deduplicating by movie ID.
// A failure on the first page aborts the run; a failure on a later page
// truncates extraction to the pages already fetched.
func (p *Pipeline) extract(ctx context.Context, logger *slog.Logger) ([]tmdb.PopularMovie, error) {
	var listings []tmdb.PopularMovie
	seen := make(map[int64]struct{})
	for page := 1; page <= p.cfg.MaxPages; page++ {
		if page > 1 {
			select {
			case <-time.After(p.cfg.PageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		resp, err := p.api.Popular(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			logger.Warn("listing page fetch failed, truncating extraction", "page", page, "error", err)
			break
		}
		for _, m := range resp.Results {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			listings = append(listings, m)
		}
		logger.Debug("listing page fetched", "page", page, "movies", len(resp.Results))
		if page >= resp.TotalPages && resp.TotalPages > 0 {
			break
		}
	}
	return listings, nil
}

// enrich fans detail lookups out over a bounded worker group. The batch is
// capped at MaxDetails first; a failed lookup keeps the listing row without
// detail fields instead of failing the run.
func (p *Pipeline) enrich(ctx context.Context, logger *slog.Logger, listings []tmdb.PopularMovie) []tmdb.Movie {
	if len(listings) > p.cfg.MaxDetails {
		logger.Warn("capping detail enrichment", "listings", len(listings), "cap", p.cfg.MaxDetails)
		listings = listings[:p.cfg.MaxDetails]
	}
	movies := make([]tmdb.Movie, len(listings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxWorkers)
	for i, listing := range listings {
		i, listing := i, listing // go.mod pins go 1.21: loop vars are still per-loop, not per-iteration
		g.Go(func() error {
			m := tmdb.Movie{Listing: listing}
			detail, err := p.api.Detail(gctx, listing.ID)
			if err != nil {
				logger.Warn("detail lookup failed, keeping listing fields", "movieId", listing.ID, "error", err)
			} else {
				m.Detail = detail
			}
			movies[i] = m
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()
	return movies
}

func rejectRecords(run *types.RunRecord, verrs []*schema.ValidationError) []types.RejectRecord {
	now := time.Now().UTC()
	out := make([]types.RejectRecord, 0, len(verrs))
	for _, verr := range verrs {
		out = append(out, types.RejectRecord{
			RunID:      run.RunID,
			Date:       run.Date,
			MovieID:    verr.MovieID,
			Field:      verr.Field,
			Reason:     verr.Reason,
			Value:      verr.Value,
			RecordedAt: now,
		})
	}
	return out
}
