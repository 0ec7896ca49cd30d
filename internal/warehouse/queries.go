package warehouse

import (
	"context"
	"fmt"

	"github.com/cinelake/cinelake/internal/analytics"
	"github.com/cinelake/cinelake/pkg/types"
)

// Compile-time interface satisfaction check.
var _ analytics.Source = (*Warehouse)(nil)

// All analytical queries run over the latest snapshot so the warehouse and
// the in-memory source answer for the same partition.

// RevenueTrend returns movie volume and mean revenue per release year.
// Records without a release year or with the 0 revenue sentinel are excluded
// before averaging.
func (w *Warehouse) RevenueTrend(ctx context.Context) ([]types.YearRevenue, error) {
	rows, err := w.pool.Query(ctx, `
		SELECT release_year, COUNT(*), AVG(revenue)::DOUBLE PRECISION
		FROM movies
		WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM movies)
			AND release_year IS NOT NULL
			AND revenue > 0
		GROUP BY release_year
		ORDER BY release_year
	`)
	if err != nil {
		return nil, fmt.Errorf("revenue trend query: %w", err)
	}
	defer rows.Close()

	trend := make([]types.YearRevenue, 0)
	for rows.Next() {
		var yr types.YearRevenue
		if err := rows.Scan(&yr.Year, &yr.MovieCount, &yr.AvgRevenue); err != nil {
			return nil, fmt.Errorf("revenue trend scan: %w", err)
		}
		trend = append(trend, yr)
	}
	return trend, rows.Err()
}

// TopProfitable returns the n most profitable movies of the latest snapshot.
// Only movies with a known positive budget and known revenue are eligible;
// a repeated title keeps its most profitable row.
func (w *Warehouse) TopProfitable(ctx context.Context, n int) ([]types.RankedMovie, error) {
	if n <= 0 {
		n = analytics.DefaultTopN
	}
	rows, err := w.pool.Query(ctx, `
		SELECT title, release_year, budget, revenue, profit, roi
		FROM (
			SELECT DISTINCT ON (title) title, release_year, budget, revenue, profit, roi
			FROM movies
			WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM movies)
				AND budget > 0
				AND revenue > 0
			ORDER BY title, profit DESC
		) best
		ORDER BY profit DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("top profitable query: %w", err)
	}
	defer rows.Close()

	ranked := make([]types.RankedMovie, 0, n)
	for rows.Next() {
		var m types.RankedMovie
		if err := rows.Scan(&m.Title, &m.ReleaseYear, &m.Budget, &m.Revenue, &m.Profit, &m.ROI); err != nil {
			return nil, fmt.Errorf("top profitable scan: %w", err)
		}
		m.Rank = len(ranked) + 1
		ranked = append(ranked, m)
	}
	return ranked, rows.Err()
}

// ROIByGenre returns mean ROI and profit per genre, most profitable ratio
// first with genre name as the tie-break. The Unknown placeholder genre and
// rows with absent ROI are excluded.
func (w *Warehouse) ROIByGenre(ctx context.Context) ([]types.GenreROI, error) {
	rows, err := w.pool.Query(ctx, `
		SELECT g.genre, COUNT(*), AVG(m.roi), AVG(m.profit)::DOUBLE PRECISION
		FROM movies m
		CROSS JOIN UNNEST(m.genres) AS g(genre)
		WHERE m.snapshot_date = (SELECT MAX(snapshot_date) FROM movies)
			AND m.roi IS NOT NULL
			AND g.genre <> ''
			AND g.genre <> $1
		GROUP BY g.genre
		ORDER BY AVG(m.roi) DESC, g.genre
	`, types.UnknownText)
	if err != nil {
		return nil, fmt.Errorf("roi by genre query: %w", err)
	}
	defer rows.Close()

	groups := make([]types.GenreROI, 0)
	for rows.Next() {
		var g types.GenreROI
		if err := rows.Scan(&g.Genre, &g.MovieCount, &g.AvgROI, &g.AvgProfit); err != nil {
			return nil, fmt.Errorf("roi by genre scan: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// LatestSnapshot returns the most recent snapshot date in the warehouse and
// its row count. An empty warehouse returns an empty date.
func (w *Warehouse) LatestSnapshot(ctx context.Context) (string, int, error) {
	var date *string
	var count int
	err := w.pool.QueryRow(ctx, `
		SELECT MAX(snapshot_date), COUNT(*) FILTER (WHERE snapshot_date = (SELECT MAX(snapshot_date) FROM movies))
		FROM movies
	`).Scan(&date, &count)
	if err != nil {
		return "", 0, fmt.Errorf("latest snapshot query: %w", err)
	}
	if date == nil {
		return "", 0, nil
	}
	return *date, count, nil
}

// RunHistory returns recent runs recorded in the warehouse, newest first.
func (w *Warehouse) RunHistory(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := w.pool.Query(ctx, `
		SELECT run_id, snapshot_date, status, extracted, enriched, processed,
			rejected, COALESCE(partition_key, ''), COALESCE(error, ''),
			started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("run history query: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var r types.RunRecord
		var status string
		if err := rows.Scan(&r.RunID, &r.Date, &status, &r.Extracted, &r.Enriched,
			&r.Processed, &r.Rejected, &r.PartitionKey, &r.Error,
			&r.StartedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("run history scan: %w", err)
		}
		r.Status = types.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
