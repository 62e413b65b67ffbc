package ports

import (
	"context"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// BlobStore is content-opaque, whole-object storage keyed by BlobKey.
//
// Get and Delete on an absent key return an error matching
// domain.ErrBlobNotFound. Other faults match domain.ErrBlobIO. Put replaces any
// existing object. Concurrent Puts to the same key are not serialized.
type BlobStore interface {
	Put(ctx context.Context, key domain.BlobKey, data []byte) error
	Get(ctx context.Context, key domain.BlobKey) ([]byte, error)
	Delete(ctx context.Context, key domain.BlobKey) error
	Exists(ctx context.Context, key domain.BlobKey) (bool, error)
}
