// Package store persists daily partition artifacts, one CSV object per
// snapshot date. An S3-backed implementation serves deployments and a
// directory-backed one serves development and tests; both share the
// {prefix}/movies_data_{date}.csv layout.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cinelake/cinelake/pkg/types"
)

// ErrNotFound reports that no partition exists for the requested date.
var ErrNotFound = errors.New("partition not found")

// Store reads and writes partition objects keyed by snapshot date.
type Store interface {
	// Put writes the partition for date, replacing any existing object.
	Put(ctx context.Context, date string, data []byte) (types.PartitionRef, error)
	// Get returns the partition bytes for date, or ErrNotFound.
	Get(ctx context.Context, date string) ([]byte, error)
	// List returns every stored partition, ascending by date.
	List(ctx context.Context) ([]types.PartitionRef, error)
}

// FileName returns the object file name for a snapshot date.
func FileName(date string) string {
	return "movies_data_" + date + ".csv"
}

// ObjectKey joins the configured prefix with the partition file name.
func ObjectKey(prefix, date string) string {
	return strings.TrimLeft(strings.TrimRight(prefix, "/")+"/"+FileName(date), "/")
}

// dateFromName extracts the snapshot date from a partition file name and
// reports whether the name matches the layout.
func dateFromName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "movies_data_")
	if !ok {
		return "", false
	}
	date, ok := strings.CutSuffix(rest, ".csv")
	if !ok {
		return "", false
	}
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return "", false
	}
	return date, true
}
