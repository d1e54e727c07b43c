// Package kv provides the flat key-value record store that backs all
// persisted collections. Records carry an explicit kind discriminator so
// bulk scans (metrics cleanup, export) never sniff record shapes.
package kv

import "context"

// Record kinds.
const (
	KindList     = "list"     // capture/inbox/scratchpad collections
	KindSettings = "settings" // single merged settings record
	KindMetric   = "metric"   // one record per normalized URL
	KindBookmark = "bookmark" // local bookmark directory entries
)

// Store is the key-value persistence contract. Values are stored as JSON;
// nested structures (lists of items, objects) round-trip intact. A missing
// key is not an error: Get reports found=false and callers treat absent
// collections as empty.
type Store interface {
	// Get unmarshals the record at key into out. found is false when the
	// key does not exist; out is left untouched in that case.
	Get(ctx context.Context, key string, out any) (found bool, err error)

	// Set marshals value and writes it at key with the given kind,
	// replacing any previous record.
	Set(ctx context.Context, key, kind string, value any) error

	// Delete removes the record at key. Deleting a missing key is a no-op.
	Delete(ctx context.Context, key string) error

	// Keys enumerates keys of the given kind, sorted ascending. An empty
	// kind enumerates everything.
	Keys(ctx context.Context, kind string) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}
