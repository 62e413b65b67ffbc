package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

// AuthService implements login, logout and per-request identity resolution.
type AuthService struct {
	backend  *SessionBackend
	resolver *IdentityResolver
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	keys ports.MachineKeyRepository,
	sessions ports.SessionStore,
	verifier ports.CredentialVerifier,
	log zerolog.Logger,
) *AuthService {
	backend := NewSessionBackend(users, sessions, verifier, log)
	machines := NewMachineKeyResolver(keys, verifier, log)
	return &AuthService{
		backend:  backend,
		resolver: NewIdentityResolver(backend, machines, log),
		log:      log,
	}
}

// Login checks creds and opens a session. Unknown usernames and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	if creds.Username == "" || creds.Password == "" {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.backend.Authenticate(ctx, creds)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}
	if user == nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.backend.Login(ctx, user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("principal", domain.AuthenticatedUser{User: *user}.Identifier()).Msg("user logged in")
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.backend.Logout(ctx, token)
}

func (s *AuthService) ResolveIdentity(ctx context.Context, creds ports.RequestCredentials) (domain.Identity, error) {
	return s.resolver.Resolve(ctx, creds)
}
