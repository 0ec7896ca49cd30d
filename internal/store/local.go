package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cinelake/cinelake/pkg/types"
)

// LocalStore keeps partitions as files in a directory. It exists for
// development runs and tests; the layout mirrors the S3 store.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns a store over it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes the partition CSV for date.
func (l *LocalStore) Put(_ context.Context, date string, data []byte) (types.PartitionRef, error) {
	name := filepath.Join(l.dir, FileName(date))
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return types.PartitionRef{}, fmt.Errorf("writing partition %s: %w", date, err)
	}
	return types.PartitionRef{Date: date, Key: name, Bytes: int64(len(data))}, nil
}

// Get reads the partition CSV for date.
func (l *LocalStore) Get(_ context.Context, date string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, FileName(date)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("partition %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading partition %s: %w", date, err)
	}
	return data, nil
}

// List scans the directory and returns every partition file, ascending by
// date. Files that do not match the layout are ignored.
func (l *LocalStore) List(_ context.Context) ([]types.PartitionRef, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}
	var refs []types.PartitionRef
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := dateFromName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat partition %s: %w", entry.Name(), err)
		}
		refs = append(refs, types.PartitionRef{
			Date:      date,
			Key:       filepath.Join(l.dir, entry.Name()),
			Bytes:     info.Size(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	slices.SortFunc(refs, func(a, b types.PartitionRef) int {
		return strings.Compare(a.Date, b.Date)
	})
	return refs, nil
}
