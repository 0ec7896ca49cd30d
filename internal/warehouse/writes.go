package warehouse

import (
	"context"
	"fmt"

	"github.com/cinelake/cinelake/pkg/types"
)

// LoadPartition replaces the rows of one snapshot date with the given
// records. Replacement runs in a transaction so a failed load never leaves a
// half-written snapshot behind.
func (w *Warehouse) LoadPartition(ctx context.Context, date string, recs []types.MovieRecord) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM movies WHERE snapshot_date = $1`, date); err != nil {
		return fmt.Errorf("clearing snapshot %s: %w", date, err)
	}

	for _, rec := range recs {
		_, err := tx.Exec(ctx, `
			INSERT INTO movies (snapshot_date, movie_id, title, original_language, overview,
				tagline, status, homepage, poster_url, imdb_id, release_date,
				genres, keywords, production_companies, spoken_languages,
				budget, revenue, runtime, popularity, vote_average, vote_count,
				adult, profit, roi, popularity_category, release_year)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
				$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		`, date, rec.MovieID, rec.Title, rec.OriginalLanguage, rec.Overview,
			rec.Tagline, rec.Status, rec.Homepage, rec.PosterURL, rec.IMDBID, rec.ReleaseDate,
			rec.Genres, rec.Keywords, rec.ProductionCompanies, rec.SpokenLanguages,
			rec.Budget, rec.Revenue, rec.Runtime, rec.Popularity, rec.VoteAverage, rec.VoteCount,
			rec.Adult, rec.Profit, rec.ROI, rec.PopularityCategory, rec.ReleaseYear)
		if err != nil {
			return fmt.Errorf("insert movie %d: %w", rec.MovieID, err)
		}
	}

	return tx.Commit(ctx)
}

// RecordRun upserts a run record into the runs table.
func (w *Warehouse) RecordRun(ctx context.Context, run types.RunRecord) error {
	_, err := w.pool.Exec(ctx, `
		INSERT INTO runs (run_id, snapshot_date, status, extracted, enriched,
			processed, rejected, partition_key, error, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id) DO UPDATE SET
			status        = EXCLUDED.status,
			extracted     = EXCLUDED.extracted,
			enriched      = EXCLUDED.enriched,
			processed     = EXCLUDED.processed,
			rejected      = EXCLUDED.rejected,
			partition_key = EXCLUDED.partition_key,
			error         = EXCLUDED.error,
			completed_at  = EXCLUDED.completed_at,
			archived_at   = NOW()
	`, run.RunID, run.Date, string(run.Status), run.Extracted, run.Enriched,
		run.Processed, run.Rejected, run.PartitionKey, run.Error,
		run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", run.RunID, err)
	}
	return nil
}
