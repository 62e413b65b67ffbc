package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrBlobIO       = errors.New("blob i/o failure")
)

// BlobKey names a stored object. Keys are minted server-side and their
// canonical UUID string is the only form a backend ever sees.
type BlobKey struct {
	uuid.UUID
}

// NewBlobKey mints a fresh time-ordered key.
func NewBlobKey() (BlobKey, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return BlobKey{}, fmt.Errorf("mint blob key: %w", err)
	}
	return BlobKey{UUID: id}, nil
}

// ParseBlobKey parses the canonical string form of a key.
func ParseBlobKey(s string) (BlobKey, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BlobKey{}, err
	}
	return BlobKey{UUID: id}, nil
}

// BlobNotFoundError reports a get or delete against an absent key.
type BlobNotFoundError struct {
	Key BlobKey
}

func (e *BlobNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %s", e.Key)
}

func (e *BlobNotFoundError) Is(target error) bool {
	return target == ErrBlobNotFound
}
