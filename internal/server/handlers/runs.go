package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cinelake/cinelake/internal/ledger"
	"github.com/cinelake/cinelake/pkg/types"
)

const defaultRunListLimit = 20

// ListRuns returns recent runs from the ledger, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		h.writeError(w, http.StatusServiceUnavailable, "run ledger not configured", nil)
		return
	}

	limit := int32(defaultRunListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = int32(n)
	}

	runs, err := h.ledger.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []types.RunRecord{}
	}
	_ = json.NewEncoder(w).Encode(runs)
}

// GetRun returns a single run together with its rejected records.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.ledger == nil {
		h.writeError(w, http.StatusServiceUnavailable, "run ledger not configured", nil)
		return
	}

	date := chi.URLParam(r, "date")
	runID := chi.URLParam(r, "runID")

	run, err := h.ledger.GetRun(r.Context(), date, runID)
	if errors.Is(err, ledger.ErrRunNotFound) {
		h.writeError(w, http.StatusNotFound, "run not found", nil)
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get run", err)
		return
	}

	rejects, err := h.ledger.ListRejects(r.Context(), date, runID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list rejects", err)
		return
	}
	if rejects == nil {
		rejects = []types.RejectRecord{}
	}

	_ = json.NewEncoder(w).Encode(struct {
		Run     *types.RunRecord     `json:"run"`
		Rejects []types.RejectRecord `json:"rejects"`
	}{Run: run, Rejects: rejects})
}
