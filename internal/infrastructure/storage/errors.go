package storage

import (
	"fmt"

	"github.com/cogere/artifact-host/internal/core/domain"
)

func notFound(key domain.BlobKey) error {
	return &domain.BlobNotFoundError{Key: key}
}

func ioFailure(op string, key domain.BlobKey, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, key, domain.ErrBlobIO, err)
}
