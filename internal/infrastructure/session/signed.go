package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

const issuer = "cogere"

// SignedStore wraps a SessionStore so that the token handed to clients is an
// HS256 JWT carrying the inner session id. Tampered, foreign or expired tokens
// are rejected before the inner store is consulted.
type SignedStore struct {
	inner  ports.SessionStore
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSignedStore returns a SignedStore. maxAge bounds a session's absolute
// lifetime independently of the inner store's inactivity timeout.
func NewSignedStore(inner ports.SessionStore, secret string, maxAge time.Duration) (*SignedStore, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	return &SignedStore{
		inner:  inner,
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

func (s *SignedStore) Create(ctx context.Context, sess ports.Session) (string, error) {
	sid, err := s.inner.Create(ctx, sess)
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        sid,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *SignedStore) Lookup(ctx context.Context, token string) (*ports.Session, error) {
	sid, err := s.parse(token, true)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	return s.inner.Lookup(ctx, sid)
}

// Destroy accepts expired tokens so a stale cookie can still log out.
func (s *SignedStore) Destroy(ctx context.Context, token string) error {
	sid, err := s.parse(token, false)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	return s.inner.Destroy(ctx, sid)
}

func (s *SignedStore) parse(token string, validateClaims bool) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if validateClaims {
		opts = append(opts, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if claims.ID == "" {
		return "", errors.New("session token has no id")
	}
	return claims.ID, nil
}
