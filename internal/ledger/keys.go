package ledger

import (
	"strconv"
	"time"
)

// PK/SK prefix constants.
const (
	prefixRun    = "RUN#"
	prefixMeta   = "META#"
	prefixReject = "REJECT#"
	prefixType   = "TYPE#"

	typeRun = prefixType + "run"
)

func runPK(date string) string { return prefixRun + date }

func runSK(runID string) string { return prefixMeta + runID }

// runListSK orders runs on the GSI: date first, then run ID, which is a
// ULID and therefore time-sortable within a date.
func runListSK(date, runID string) string { return date + "#" + runID }

func rejectSK(runID string, movieID int64) string {
	return prefixReject + runID + "#" + strconv.FormatInt(movieID, 10)
}

func ttlEpoch(d time.Duration) int64 {
	return time.Now().Add(d).Unix()
}

func isExpired(epoch int64) bool {
	return epoch > 0 && time.Now().Unix() > epoch
}
