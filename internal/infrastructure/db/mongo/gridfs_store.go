package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cogere/artifact-host/internal/core/domain"
)

const defaultBucket = "blobs"

// GridFSStore keeps blobs in a GridFS bucket. The file _id and filename are
// both the canonical key string, so a key maps to at most one file.
//
// Put is delete-then-upload and is therefore not atomic: a reader racing a
// replacement may observe the key as absent.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	if bucketName == "" {
		bucketName = defaultBucket
	}
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket %s: %w", bucketName, err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(ctx context.Context, key domain.BlobKey, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := key.String()
	if err := s.bucket.DeleteContext(ctx, id); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return blobIO("put", key, err)
	}
	if err := s.bucket.UploadFromStreamWithID(id, id, bytes.NewReader(data)); err != nil {
		return blobIO("put", key, err)
	}
	return nil
}

func (s *GridFSStore) Get(ctx context.Context, key domain.BlobKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStream(key.String())
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, &domain.BlobNotFoundError{Key: key}
	}
	if err != nil {
		return nil, blobIO("get", key, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, blobIO("get", key, err)
	}
	return data, nil
}

func (s *GridFSStore) Delete(ctx context.Context, key domain.BlobKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.bucket.DeleteContext(ctx, key.String())
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return &domain.BlobNotFoundError{Key: key}
	}
	if err != nil {
		return blobIO("delete", key, err)
	}
	return nil
}

func (s *GridFSStore) Exists(ctx context.Context, key domain.BlobKey) (bool, error) {
	n, err := s.bucket.GetFilesCollection().CountDocuments(ctx, bson.M{"_id": key.String()})
	if err != nil {
		return false, blobIO("exists", key, err)
	}
	return n > 0, nil
}

func blobIO(op string, key domain.BlobKey, err error) error {
	return fmt.Errorf("%s %s: %w: %w", op, key, domain.ErrBlobIO, err)
}
