// Package derive computes the per-record derived metrics for movie rows.
// Everything here is pure: no I/O, no clock, no logging.
package derive

import (
	"fmt"
	"time"

	"github.com/cinelake/cinelake/pkg/types"
)

// Profit returns revenue minus budget. It is defined for all inputs and may
// be negative; whether a 0 budget or revenue means "unknown" is the caller's
// concern.
func Profit(budget, revenue int64) int64 {
	return revenue - budget
}

// ROI returns (revenue - budget) / budget when the budget is a known positive
// figure. For budget <= 0 the metric is undefined and ok is false; callers
// must treat the value as absent, never substitute 0, NaN, or Inf.
func ROI(budget, revenue int64) (roi float64, ok bool) {
	if budget <= 0 {
		return 0, false
	}
	return float64(revenue-budget) / float64(budget), true
}

// ReleaseYear extracts the calendar year from a YYYY-MM-DD release date.
// Empty or unparseable input yields ok=false: the field is optional, so a
// missing year is an absence, not an error.
func ReleaseYear(date string) (year int, ok bool) {
	if date == "" {
		return 0, false
	}
	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// Categorizer bands popularity scores into named categories using an
// explicit, ordered threshold table supplied by configuration.
type Categorizer struct {
	thresholds []types.PopularityThreshold
}

// NewCategorizer validates and freezes a threshold table. The table must be
// non-empty, start at bound 0, carry non-empty labels, and have strictly
// increasing bounds.
func NewCategorizer(table []types.PopularityThreshold) (*Categorizer, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("threshold table is empty")
	}
	if table[0].Bound != 0 {
		return nil, fmt.Errorf("first threshold bound must be 0, got %v", table[0].Bound)
	}
	for i, th := range table {
		if th.Label == "" {
			return nil, fmt.Errorf("threshold %d has an empty label", i)
		}
		if i > 0 && th.Bound <= table[i-1].Bound {
			return nil, fmt.Errorf("threshold bounds must be strictly increasing: %v after %v", th.Bound, table[i-1].Bound)
		}
	}
	frozen := make([]types.PopularityThreshold, len(table))
	copy(frozen, table)
	return &Categorizer{thresholds: frozen}, nil
}

// Categorize returns the label of the highest bound the popularity meets or
// exceeds. Scores below the first bound fall into the first band.
func (c *Categorizer) Categorize(popularity float64) string {
	label := c.thresholds[0].Label
	for _, th := range c.thresholds[1:] {
		if popularity < th.Bound {
			break
		}
		label = th.Label
	}
	return label
}

// Thresholds returns a copy of the frozen banding table.
func (c *Categorizer) Thresholds() []types.PopularityThreshold {
	out := make([]types.PopularityThreshold, len(c.thresholds))
	copy(out, c.thresholds)
	return out
}

// Apply fills the derived fields of a record in place from its raw fields.
func Apply(rec *types.MovieRecord, cat *Categorizer) {
	rec.Profit = Profit(rec.Budget, rec.Revenue)

	rec.ROI = nil
	if roi, ok := ROI(rec.Budget, rec.Revenue); ok {
		rec.ROI = &roi
	}

	rec.PopularityCategory = cat.Categorize(rec.Popularity)

	rec.ReleaseYear = nil
	if year, ok := ReleaseYear(rec.ReleaseDate); ok {
		rec.ReleaseYear = &year
	}
}
