package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type machineResolver interface {
	Resolve(ctx context.Context, header string) (*domain.MachineKey, error)
}

// IdentityResolver turns request credentials into a single Identity.
//
// Sessions are tried first: they belong to interactive users and cost no hash
// comparison. Machine keys are only checked when no session identity exists.
// The first success wins and nothing is retried.
type IdentityResolver struct {
	sessions sessionResolver
	machines machineResolver
	log      zerolog.Logger
}

func NewIdentityResolver(sessions sessionResolver, machines machineResolver, log zerolog.Logger) *IdentityResolver {
	return &IdentityResolver{sessions: sessions, machines: machines, log: log}
}

// Resolve returns the request's identity or domain.ErrUnauthorized. Any other
// error is an infrastructure fault and must not be reported as 401.
func (r *IdentityResolver) Resolve(ctx context.Context, creds ports.RequestCredentials) (domain.Identity, error) {
	user, err := r.sessions.Resolve(ctx, creds.SessionToken)
	if err != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("session", "error").Inc()
		return nil, err
	}
	if user != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("session", "ok").Inc()
		r.log.Debug().Str("username", user.Username).Msg("authenticated by session")
		return domain.AuthenticatedUser{User: *user}, nil
	}

	machine, err := r.machines.Resolve(ctx, creds.Authorization)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		metrics.IdentityResolutionsTotal.WithLabelValues("none", "unauthorized").Inc()
		return nil, domain.ErrUnauthorized
	case err != nil:
		metrics.IdentityResolutionsTotal.WithLabelValues("machine_key", "error").Inc()
		return nil, err
	case machine == nil:
		metrics.IdentityResolutionsTotal.WithLabelValues("none", "unauthorized").Inc()
		return nil, domain.ErrUnauthorized
	}

	metrics.IdentityResolutionsTotal.WithLabelValues("machine_key", "ok").Inc()
	r.log.Debug().Str("machine", machine.Description).Msg("authenticated by machine key")
	return domain.AuthenticatedMachine{Machine: *machine}, nil
}
