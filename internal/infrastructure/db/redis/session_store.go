package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/infrastructure/session"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore keeps sessions in Redis hashes with an inactivity timeout.
// Key format: session:<id>, fields user_id and binding.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, sess ports.Session) (string, error) {
	id, err := session.NewID()
	if err != nil {
		return "", err
	}
	key := s.key(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "user_id", sess.UserID.String(), "binding", sess.Binding)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Lookup returns the session and slides its expiry forward.
func (s *SessionStore) Lookup(ctx context.Context, id string) (*ports.Session, error) {
	key := s.key(id)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		// A corrupt entry can never resolve; drop it.
		_ = s.client.Del(ctx, key).Err()
		return nil, domain.ErrSessionNotFound
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return &ports.Session{UserID: userID, Binding: fields["binding"]}, nil
}

func (s *SessionStore) Destroy(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) key(id string) string {
	return "session:" + id
}
