package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

var errBackend = errors.New("backend unavailable")

// plainHash is the stored-hash format understood by stubVerifier.
func plainHash(secret string) string { return "plain:" + secret }

// stubVerifier accepts a secret when the stored hash is plainHash(secret) and
// records every hash it was asked to compare against.
type stubVerifier struct {
	mu     sync.Mutex
	hashes []string
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, secret, storedHash string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hashes = append(v.hashes, storedHash)
	if v.err != nil {
		return false, v.err
	}
	return storedHash == plainHash(secret), nil
}

func (v *stubVerifier) calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.hashes)
}

type stubUsers struct {
	byName map[string]*domain.User
	err    error
}

func newStubUsers(users ...*domain.User) *stubUsers {
	r := &stubUsers{byName: make(map[string]*domain.User)}
	for _, u := range users {
		r.byName[u.Username] = u
	}
	return r
}

func (r *stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byName[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byName {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubKeys struct {
	keys map[uuid.UUID]*domain.MachineKey
	err  error
}

func newStubKeys(keys ...*domain.MachineKey) *stubKeys {
	r := &stubKeys{keys: make(map[uuid.UUID]*domain.MachineKey)}
	for _, k := range keys {
		r.keys[k.ID] = k
	}
	return r
}

func (r *stubKeys) FindByID(_ context.Context, id uuid.UUID) (*domain.MachineKey, error) {
	if r.err != nil {
		return nil, r.err
	}
	k, ok := r.keys[id]
	if !ok {
		return nil, domain.ErrMachineKeyNotFound
	}
	clone := *k
	return &clone, nil
}

func (r *stubKeys) List(_ context.Context) ([]*domain.MachineKey, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.MachineKey, 0, len(r.keys))
	for _, k := range r.keys {
		clone := *k
		out = append(out, &clone)
	}
	return out, nil
}

type stubSessions struct {
	mu       sync.Mutex
	sessions map[string]ports.Session
	next     int
	err      error
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: make(map[string]ports.Session)}
}

func (s *stubSessions) Create(_ context.Context, sess ports.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.next++
	token := fmt.Sprintf("tok-%d", s.next)
	s.sessions[token] = sess
	return token, nil
}

func (s *stubSessions) Lookup(_ context.Context, token string) (*ports.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	sess, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessions) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.sessions[token]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

type stubPlugins struct {
	mu        sync.Mutex
	plugins   map[uuid.UUID]*domain.Plugin
	createErr error
}

func newStubPlugins() *stubPlugins {
	return &stubPlugins{plugins: make(map[uuid.UUID]*domain.Plugin)}
}

func (r *stubPlugins) Create(_ context.Context, p *domain.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *p
	r.plugins[p.ID] = &clone
	return nil
}

func (r *stubPlugins) FindByID(_ context.Context, id uuid.UUID) (*domain.Plugin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plugins[id]
	if !ok {
		return nil, domain.ErrPluginNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubPlugins) List(_ context.Context) ([]*domain.Plugin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubPlugins) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[id]; !ok {
		return domain.ErrPluginNotFound
	}
	delete(r.plugins, id)
	return nil
}
