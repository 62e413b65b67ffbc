package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// SessionBackend authenticates username/password pairs and maps established
// sessions back to live user records.
type SessionBackend struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	verifier ports.CredentialVerifier
	log      zerolog.Logger
}

func NewSessionBackend(
	users ports.UserRepository,
	sessions ports.SessionStore,
	verifier ports.CredentialVerifier,
	log zerolog.Logger,
) *SessionBackend {
	return &SessionBackend{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		log:      log,
	}
}

// Authenticate returns the user matching creds, or (nil, nil) when the
// username is unknown or the password is wrong. The two cases are
// deliberately indistinguishable; both run exactly one hash comparison.
// Errors are infrastructure faults only.
func (b *SessionBackend) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	user, err := b.users.FindByUsername(ctx, creds.Username)
	hash := dummyHash()
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user = nil
	case err != nil:
		return nil, fmt.Errorf("authenticate: find user: %w", err)
	default:
		hash = user.PasswordHash
	}

	ok, err := b.verifier.Verify(ctx, creds.Password, hash)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if !ok || user == nil {
		b.log.Debug().Object("credentials", creds).Msg("login rejected")
		return nil, nil
	}
	return user, nil
}

// Resolve returns the user bound to a session token, or (nil, nil) when the
// token is unknown, the account no longer exists, or the account's password
// changed after the session was created.
func (b *SessionBackend) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := b.sessions.Lookup(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	user, err := b.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		b.log.Debug().Stringer("user_id", sess.UserID).Msg("session refers to a deleted account")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: find user: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(sess.Binding), []byte(user.CredentialBinding())) != 1 {
		b.log.Debug().Str("username", user.Username).Msg("session binding no longer matches credentials")
		return nil, nil
	}
	return user, nil
}

// Login opens a new session for user and returns its token.
func (b *SessionBackend) Login(ctx context.Context, user *domain.User) (string, error) {
	token, err := b.sessions.Create(ctx, ports.Session{
		UserID:  user.ID,
		Binding: user.CredentialBinding(),
	})
	if err != nil {
		return "", fmt.Errorf("login: create session: %w", err)
	}
	return token, nil
}

// Logout ends the session identified by token. Unknown tokens are ignored.
func (b *SessionBackend) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := b.sessions.Destroy(ctx, token); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
