package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cogere/artifact-host/internal/core/domain"
)

const tmpPrefix = ".tmp-"

// FilesystemStore keeps each object in a file named by the key's canonical
// string inside root. Writes go to a temporary file in the same directory,
// are fsynced, then renamed into place, so a Get never observes a partially
// written object.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates root if needed and removes temporary files left
// behind by interrupted writes.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading blob root %s: %w", root, err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			_ = os.Remove(filepath.Join(root, e.Name()))
		}
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) path(key domain.BlobKey) string {
	return filepath.Join(s.root, key.String())
}

func (s *FilesystemStore) Put(ctx context.Context, key domain.BlobKey, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, tmpPrefix+key.String()+"-*")
	if err != nil {
		return ioFailure("put", key, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return ioFailure("put", key, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ioFailure("put", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ioFailure("put", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		_ = os.Remove(tmpName)
		return ioFailure("put", key, err)
	}
	return nil
}

func (s *FilesystemStore) Get(ctx context.Context, key domain.BlobKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, ioFailure("get", key, err)
	}
	return data, nil
}

func (s *FilesystemStore) Delete(ctx context.Context, key domain.BlobKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(key)
	}
	if err != nil {
		return ioFailure("delete", key, err)
	}
	return nil
}

func (s *FilesystemStore) Exists(ctx context.Context, key domain.BlobKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, ioFailure("exists", key, err)
	}
}
