// Package archive persists dated scan artifacts (return reports and raw
// market-data snapshots) to a cold-storage backend, either a local directory
// or an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/mdewey/buywrite/internal/dates"
)

// Store is a flat key/value archive. Keys use forward slashes regardless of
// backend.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Keys returns every stored key under the prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}

// ReportKey is the archive key for a day's return report, e.g.
// "returns/2025-05-19.csv".
func ReportKey(day time.Time, ext string) string {
	return fmt.Sprintf("returns/%s.%s", day.Format(dates.Format), ext)
}

// SnapshotKey is the archive key for a day's raw quote/chain snapshot.
func SnapshotKey(day time.Time) string {
	return fmt.Sprintf("snapshots/%s.jsonl", day.Format(dates.Format))
}

// Options selects and configures a backend. Kind is "local" or "s3"; an
// empty Kind means no archiving.
type Options struct {
	Kind string
	// Path is the base directory for the local backend.
	Path string
	S3   S3Options
}

// New builds the configured backend, or (nil, nil) when archiving is
// disabled.
func New(opts Options) (Store, error) {
	switch opts.Kind {
	case "":
		return nil, nil
	case "local":
		return NewDir(opts.Path)
	case "s3":
		return NewS3(opts.S3)
	default:
		return nil, fmt.Errorf("unknown archive kind %q", opts.Kind)
	}
}
