package analytics

import (
	"context"
	"slices"
	"sync"

	"github.com/cinelake/cinelake/pkg/types"
)

// Memory is a Source over an in-memory snapshot of one processed partition.
// The year and genre aggregates are precomputed at load time; rankings are
// depth-dependent and computed per call. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	date    string
	records []types.MovieRecord
	trend   []types.YearRevenue
	byGenre []types.GenreROI
}

// NewMemory returns an empty snapshot. Queries against it return empty
// results until Load is called.
func NewMemory() *Memory {
	return &Memory{}
}

// Load replaces the snapshot and recomputes the cached aggregates.
func (m *Memory) Load(date string, recs []types.MovieRecord) {
	trend := RevenueTrend(recs)
	byGenre := ROIByGenre(recs)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.date = date
	m.records = recs
	m.trend = trend
	m.byGenre = byGenre
}

// Snapshot reports the loaded partition date and record count.
func (m *Memory) Snapshot() (date string, count int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.date, len(m.records)
}

// RevenueTrend implements Source.
func (m *Memory) RevenueTrend(_ context.Context) ([]types.YearRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.trend), nil
}

// TopProfitable implements Source.
func (m *Memory) TopProfitable(_ context.Context, n int) ([]types.RankedMovie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return TopProfitable(m.records, n), nil
}

// ROIByGenre implements Source.
func (m *Memory) ROIByGenre(_ context.Context) ([]types.GenreROI, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.byGenre), nil
}
