package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/cogere/artifact-host/internal/core/domain"
)

// PluginRepository is the artifact catalog. It is insert-only apart from
// Delete; there is no update path.
type PluginRepository interface {
	Create(ctx context.Context, p *domain.Plugin) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Plugin, error)
	List(ctx context.Context) ([]*domain.Plugin, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
