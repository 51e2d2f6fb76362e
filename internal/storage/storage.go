package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// PlanArchive defines the interface for archiving plan snapshots in object
// storage. Archiving is best effort: callers must not fail a generation
// request because a snapshot could not be written.
type PlanArchive interface {
	// StoreSnapshot writes the serialized plan body under the given key,
	// overwriting any previous object at that key.
	StoreSnapshot(ctx context.Context, objectKey string, body []byte) error

	// SnapshotDownloadURL creates a temporary URL that allows GET requests
	// for downloading a stored snapshot directly from the storage provider.
	SnapshotDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
