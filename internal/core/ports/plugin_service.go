package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// PluginMetadata accompanies an uploaded artifact.
type PluginMetadata struct {
	ArtifactID string `json:"artifact_id" validate:"required"`
	GroupID    string `json:"group_id" validate:"required"`
	Version    string `json:"version" validate:"required"`
}

// PluginService gates catalog and blob operations behind the permission model.
type PluginService interface {
	Upload(ctx context.Context, id domain.Identity, meta PluginMetadata, data []byte) (*domain.Plugin, error)
	Download(ctx context.Context, id domain.Identity, pluginID uuid.UUID) (*domain.Plugin, []byte, error)
	Delete(ctx context.Context, id domain.Identity, pluginID uuid.UUID) error
	List(ctx context.Context, id domain.Identity) ([]*domain.Plugin, error)
}

// AdminService exposes account administration to identities holding
// domain.PermissionManageUsers.
type AdminService interface {
	ListMachineKeys(ctx context.Context, id domain.Identity) ([]*domain.MachineKey, error)
}
