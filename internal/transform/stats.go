package transform

import (
	"slices"

	"github.com/cinelake/cinelake/internal/tmdb"
)

// Stats holds the batch central statistics used to impute missing numerics.
// Medians serve the heavy-tailed features (budget, revenue, vote count);
// means serve the roughly symmetric ones (vote average, popularity,
// runtime). A statistic is 0 when the batch carries no value at all for the
// feature.
//
// Known-but-zero values participate: only a value missing from the payload
// is excluded, so a real 0 budget still pulls the median down.
type Stats struct {
	BudgetMedian    float64
	RevenueMedian   float64
	VoteCountMedian float64
	VoteAverageMean float64
	PopularityMean  float64
	RuntimeMean     float64
}

// ComputeStats derives the imputation statistics for a batch.
func ComputeStats(movies []tmdb.Movie) Stats {
	var (
		budgets, revenues, voteCounts []float64
		voteAverages, pops, runtimes  []float64
	)
	for _, m := range movies {
		appendInt(&budgets, effectiveBudget(m))
		appendInt(&revenues, effectiveRevenue(m))
		appendInt(&runtimes, effectiveRuntime(m))
		appendInt(&voteCounts, effectiveVoteCount(m))
		appendFloat(&pops, effectivePopularity(m))
		appendFloat(&voteAverages, effectiveVoteAverage(m))
	}
	return Stats{
		BudgetMedian:    median(budgets),
		RevenueMedian:   median(revenues),
		VoteCountMedian: median(voteCounts),
		VoteAverageMean: mean(voteAverages),
		PopularityMean:  mean(pops),
		RuntimeMean:     mean(runtimes),
	}
}

func appendInt(dst *[]float64, v *int64) {
	if v != nil {
		*dst = append(*dst, float64(*v))
	}
}

func appendFloat(dst *[]float64, v *float64) {
	if v != nil {
		*dst = append(*dst, *v)
	}
}

// median returns the middle value, averaging the two central values for
// even-sized input, or 0 for empty input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// mean returns the arithmetic mean, or 0 for empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
