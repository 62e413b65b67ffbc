package service

import (
	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

// Authorize checks p against the policy table and records the decision in the
// audit log and the permission metrics. Both the route middleware and the
// services decide through it. It returns domain.ErrUnauthorized for a missing identity and
// domain.ErrForbidden for a denied one.
func Authorize(log zerolog.Logger, id domain.Identity, p domain.Permission) error {
	if id == nil {
		return domain.ErrUnauthorized
	}
	if !domain.HasPermission(id, p) {
		metrics.PermissionDecisionsTotal.WithLabelValues(p.String(), "deny").Inc()
		log.Warn().
			Str("principal", domain.Identifier(id)).
			Stringer("permission", p).
			Msg("permission denied")
		return domain.ErrForbidden
	}
	metrics.PermissionDecisionsTotal.WithLabelValues(p.String(), "allow").Inc()
	log.Debug().
		Str("principal", domain.Identifier(id)).
		Stringer("permission", p).
		Msg("permission granted")
	return nil
}
