package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cogere/artifact-host/internal/core/domain"
	"github.com/cogere/artifact-host/internal/core/ports"
)

// AdminService serves account administration views.
type AdminService struct {
	keys ports.MachineKeyRepository
	log  zerolog.Logger
}

func NewAdminService(keys ports.MachineKeyRepository, log zerolog.Logger) *AdminService {
	return &AdminService{keys: keys, log: log}
}

func (s *AdminService) ListMachineKeys(ctx context.Context, id domain.Identity) ([]*domain.MachineKey, error) {
	if err := Authorize(s.log, id, domain.PermissionManageUsers); err != nil {
		return nil, err
	}
	return s.keys.List(ctx)
}
