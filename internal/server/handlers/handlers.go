// Package handlers implements HTTP request handlers for the cinelake API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cinelake/cinelake/internal/analytics"
	"github.com/cinelake/cinelake/internal/store"
	"github.com/cinelake/cinelake/pkg/types"
)

// RunReader is the slice of the run ledger the API serves.
type RunReader interface {
	ListRuns(ctx context.Context, limit int32) ([]types.RunRecord, error)
	GetRun(ctx context.Context, date, runID string) (*types.RunRecord, error)
	ListRejects(ctx context.Context, date, runID string) ([]types.RejectRecord, error)
}

// Mirror receives reloaded partitions when a warehouse is attached.
type Mirror interface {
	LoadPartition(ctx context.Context, date string, recs []types.MovieRecord) error
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	source analytics.Source
	store  store.Store
	memory *analytics.Memory
	ledger RunReader
	mirror Mirror
	logger *slog.Logger
}

// New creates a Handlers instance answering analytics from source and
// partition operations from st.
func New(source analytics.Source, st store.Store) *Handlers {
	return &Handlers{
		source: source,
		store:  st,
		logger: slog.Default(),
	}
}

// SetMemory attaches the in-memory snapshot refreshed by reloads.
func (h *Handlers) SetMemory(m *analytics.Memory) {
	h.memory = m
}

// SetLedger attaches the run ledger.
func (h *Handlers) SetLedger(l RunReader) {
	h.ledger = l
}

// SetMirror attaches the warehouse reload target.
func (h *Handlers) SetMirror(m Mirror) {
	h.mirror = m
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to
// the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
