package types

import "time"

// RunRecord is the durable ledger entry for one daily pipeline run. A record
// is written with status RUNNING when the run starts and updated exactly once
// on completion; history is append-only across runs.
type RunRecord struct {
	RunID        string     `json:"runId"`
	Date         string     `json:"date"`
	Status       RunStatus  `json:"status"`
	Extracted    int        `json:"extracted"`
	Enriched     int        `json:"enriched"`
	Processed    int        `json:"processed"`
	Rejected     int        `json:"rejected"`
	PartitionKey string     `json:"partitionKey,omitempty"`
	Error        string     `json:"error,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Duration returns the wall-clock duration of a completed run, or zero while
// the run is still in flight.
func (r RunRecord) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// RejectRecord quarantines one row excluded by schema validation. The batch
// continues without the row; the reject is recorded so the exclusion is
// auditable instead of silent.
type RejectRecord struct {
	RunID      string    `json:"runId"`
	Date       string    `json:"date"`
	MovieID    int64     `json:"movieId"`
	Field      string    `json:"field"`
	Reason     string    `json:"reason"`
	Value      string    `json:"value,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}
