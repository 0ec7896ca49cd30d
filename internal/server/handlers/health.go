package handlers

import (
	"encoding/json"
	"net/http"
)

// Healthz reports server liveness and, when an in-memory snapshot is
// attached, which partition it currently serves.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Status       string `json:"status"`
		SnapshotDate string `json:"snapshotDate,omitempty"`
		Records      int    `json:"records,omitempty"`
	}{Status: "ok"}

	if h.memory != nil {
		body.SnapshotDate, body.Records = h.memory.Snapshot()
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
}
