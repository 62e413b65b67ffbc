package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
	"github.com/cogere/artifact-host/internal/pkg/metrics"
)

// PluginService stores artifacts in the blob store and indexes them in the
// catalog. Every mutating call is gated by the permission model.
type PluginService struct {
	plugins ports.PluginRepository
	blobs   ports.BlobStore
	log     zerolog.Logger
	now     func() time.Time
}

func NewPluginService(plugins ports.PluginRepository, blobs ports.BlobStore, log zerolog.Logger) *PluginService {
	return &PluginService{
		plugins: plugins,
		blobs:   blobs,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload writes data under a freshly minted key and then records it in the
// catalog. Keys are never reused, so concurrent uploads never contend for the
// same object. If the catalog insert fails the blob is removed best-effort.
func (s *PluginService) Upload(ctx context.Context, id domain.Identity, meta ports.PluginMetadata, data []byte) (*domain.Plugin, error) {
	if err := Authorize(s.log, id, domain.PermissionUploadPlugin); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyArtifact
	}

	key, err := domain.NewBlobKey()
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("upload plugin: %w", err)
	}

	plugin := &domain.Plugin{
		ID:         key.UUID,
		ArtifactID: meta.ArtifactID,
		GroupID:    meta.GroupID,
		Version:    meta.Version,
		UploadedBy: domain.Identifier(id),
		Size:       int64(len(data)),
		CreatedAt:  s.now(),
	}
	if err := s.plugins.Create(ctx, plugin); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.Warn().Err(delErr).Stringer("key", key).Msg("failed to remove orphaned blob")
		}
		return nil, fmt.Errorf("upload plugin: %w", err)
	}

	metrics.PluginUploadsTotal.WithLabelValues(principalKind(id)).Inc()
	metrics.PluginUploadBytes.Observe(float64(len(data)))
	s.log.Info().
		Str("principal", domain.Identifier(id)).
		Stringer("id", plugin.ID).
		Str("artifact", fmt.Sprintf("%s:%s:%s", meta.GroupID, meta.ArtifactID, meta.Version)).
		Msg("plugin uploaded")

	return plugin, nil
}

// Download returns a plugin's catalog entry and bytes. Any authenticated
// identity may download.
func (s *PluginService) Download(ctx context.Context, id domain.Identity, pluginID uuid.UUID) (*domain.Plugin, []byte, error) {
	if id == nil {
		return nil, nil, domain.ErrUnauthorized
	}

	plugin, err := s.plugins.FindByID(ctx, pluginID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.Get(ctx, domain.BlobKey{UUID: plugin.ID})
	if err != nil {
		return nil, nil, fmt.Errorf("download plugin: %w", err)
	}
	return plugin, data, nil
}

// Delete removes the catalog row and then the blob. A blob that is already
// gone is not an error.
func (s *PluginService) Delete(ctx context.Context, id domain.Identity, pluginID uuid.UUID) error {
	if err := Authorize(s.log, id, domain.PermissionDeletePlugin); err != nil {
		return err
	}

	if err := s.plugins.Delete(ctx, pluginID); err != nil {
		return err
	}

	err := s.blobs.Delete(ctx, domain.BlobKey{UUID: pluginID})
	switch {
	case errors.Is(err, domain.ErrBlobNotFound):
		s.log.Warn().Stringer("id", pluginID).Msg("catalog entry had no blob")
	case err != nil:
		return fmt.Errorf("delete plugin: %w", err)
	}

	s.log.Info().Str("principal", domain.Identifier(id)).Stringer("id", pluginID).Msg("plugin deleted")
	return nil
}

func (s *PluginService) List(ctx context.Context, id domain.Identity) ([]*domain.Plugin, error) {
	if id == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.plugins.List(ctx)
}

func principalKind(id domain.Identity) string {
	switch id.(type) {
	case domain.AuthenticatedUser:
		return "user"
	case domain.AuthenticatedMachine:
		return "machine"
	default:
		return "unknown"
	}
}
