package storage

import (
	"context"
	"errors"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

// Instrumented counts every call on the wrapped store by operation and result.
type Instrumented struct {
	inner ports.BlobStore
}

func NewInstrumented(inner ports.BlobStore) *Instrumented {
	return &Instrumented{inner: inner}
}

func (s *Instrumented) Put(ctx context.Context, key domain.BlobKey, data []byte) error {
	err := s.inner.Put(ctx, key, data)
	observe("put", err)
	return err
}

func (s *Instrumented) Get(ctx context.Context, key domain.BlobKey) ([]byte, error) {
	data, err := s.inner.Get(ctx, key)
	observe("get", err)
	return data, err
}

func (s *Instrumented) Delete(ctx context.Context, key domain.BlobKey) error {
	err := s.inner.Delete(ctx, key)
	observe("delete", err)
	return err
}

func (s *Instrumented) Exists(ctx context.Context, key domain.BlobKey) (bool, error) {
	ok, err := s.inner.Exists(ctx, key)
	observe("exists", err)
	return ok, err
}

func observe(op string, err error) {
	result := "ok"
	switch {
	case errors.Is(err, domain.ErrBlobNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	metrics.BlobOperationsTotal.WithLabelValues(op, result).Inc()
}
