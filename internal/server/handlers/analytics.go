package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cinelake/cinelake/pkg/types"
)

// RevenueTrend returns movie volume and mean revenue per release year.
func (h *Handlers) RevenueTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := h.source.RevenueTrend(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to compute revenue trend", err)
		return
	}
	if trend == nil {
		trend = []types.YearRevenue{}
	}
	_ = json.NewEncoder(w).Encode(trend)
}

// TopProfitable returns the profit ranking. The optional limit query
// parameter bounds the depth; omitted or zero means the default depth.
func (h *Handlers) TopProfitable(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	ranked, err := h.source.TopProfitable(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to compute profit ranking", err)
		return
	}
	if ranked == nil {
		ranked = []types.RankedMovie{}
	}
	_ = json.NewEncoder(w).Encode(ranked)
}

// ROIByGenre returns per-genre return-on-investment aggregates.
func (h *Handlers) ROIByGenre(w http.ResponseWriter, r *http.Request) {
	byGenre, err := h.source.ROIByGenre(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to compute roi by genre", err)
		return
	}
	if byGenre == nil {
		byGenre = []types.GenreROI{}
	}
	_ = json.NewEncoder(w).Encode(byGenre)
}
