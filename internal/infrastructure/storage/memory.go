package storage

import (
	"context"
	"sync"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// MemoryStore is an in-process BlobStore guarded by an RWMutex. Data is
// copied on Put and on Get so callers can never alias stored bytes.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[domain.BlobKey][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[domain.BlobKey][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key domain.BlobKey, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key domain.BlobKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, notFound(key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key domain.BlobKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return notFound(key)
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) Exists(ctx context.Context, key domain.BlobKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}
