package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cogere/artifact-host/internal/core/domain"
)

const machineKeyColumns = `id::text, description, group_id::text, key_hash`

type MachineKeyRepository struct {
	pool *pgxpool.Pool
}

func NewMachineKeyRepository(pool *pgxpool.Pool) *MachineKeyRepository {
	return &MachineKeyRepository{pool: pool}
}

func (r *MachineKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.MachineKey, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+machineKeyColumns+` FROM machine_keys WHERE id = $1::uuid`, id.String())
	key, err := scanMachineKey(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMachineKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find machine key: %w", err)
	}
	return key, nil
}

func (r *MachineKeyRepository) List(ctx context.Context) ([]*domain.MachineKey, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+machineKeyColumns+` FROM machine_keys ORDER BY description`)
	if err != nil {
		return nil, fmt.Errorf("list machine keys: %w", err)
	}
	defer rows.Close()

	var keys []*domain.MachineKey
	for rows.Next() {
		key, err := scanMachineKey(rows)
		if err != nil {
			return nil, fmt.Errorf("list machine keys: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list machine keys: %w", err)
	}
	return keys, nil
}

func scanMachineKey(row pgx.Row) (*domain.MachineKey, error) {
	var (
		id, groupID string
		k           domain.MachineKey
	)
	if err := row.Scan(&id, &k.Description, &groupID, &k.KeyHash); err != nil {
		return nil, err
	}
	var err error
	if k.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode machine key id: %w", err)
	}
	if k.GroupID, err = uuid.Parse(groupID); err != nil {
		return nil, fmt.Errorf("decode machine key group id: %w", err)
	}
	return &k, nil
}
