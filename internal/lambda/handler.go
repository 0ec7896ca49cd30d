package lambda

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/cinelake/cinelake/pkg/types"
)

// Response summarizes one scheduled ETL invocation.
type Response struct {
	RunID        string `json:"runId"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Extracted    int    `json:"extracted"`
	Enriched     int    `json:"enriched"`
	Processed    int    `json:"processed"`
	Rejected     int    `json:"rejected"`
	PartitionKey string `json:"partitionKey,omitempty"`
}

// HandleScheduled runs one snapshot cycle for the event's date. A zero event
// time (manual invocation) falls back to the current UTC day.
func HandleScheduled(ctx context.Context, d *Deps, event events.CloudWatchEvent) (Response, error) {
	when := event.Time.UTC()
	if event.Time.IsZero() {
		when = time.Now().UTC()
	}
	date := when.Format(types.DateLayout)

	d.Logger.Info("scheduled etl invoked", "date", date, "source", event.Source)

	run, err := d.Pipeline.Run(ctx, date)
	resp := Response{
		RunID:        run.RunID,
		Date:         run.Date,
		Status:       string(run.Status),
		Extracted:    run.Extracted,
		Enriched:     run.Enriched,
		Processed:    run.Processed,
		Rejected:     run.Rejected,
		PartitionKey: run.PartitionKey,
	}
	return resp, err
}
