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

const pluginColumns = `id::text, artifact_id, group_id, version, uploaded_by, size, created_at`

type PluginRepository struct {
	pool *pgxpool.Pool
}

func NewPluginRepository(pool *pgxpool.Pool) *PluginRepository {
	return &PluginRepository{pool: pool}
}

func (r *PluginRepository) Create(ctx context.Context, p *domain.Plugin) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO plugins (id, artifact_id, group_id, version, uploaded_by, size, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
	`, p.ID.String(), p.ArtifactID, p.GroupID, p.Version, p.UploadedBy, p.Size, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert plugin: %w", err)
	}
	return nil
}

func (r *PluginRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Plugin, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+pluginColumns+` FROM plugins WHERE id = $1::uuid`, id.String())
	p, err := scanPlugin(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPluginNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find plugin: %w", err)
	}
	return p, nil
}

func (r *PluginRepository) List(ctx context.Context) ([]*domain.Plugin, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+pluginColumns+` FROM plugins ORDER BY group_id, artifact_id, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	defer rows.Close()

	plugins := []*domain.Plugin{}
	for rows.Next() {
		p, err := scanPlugin(rows)
		if err != nil {
			return nil, fmt.Errorf("list plugins: %w", err)
		}
		plugins = append(plugins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plugins: %w", err)
	}
	return plugins, nil
}

func (r *PluginRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plugins WHERE id = $1::uuid`, id.String())
	if err != nil {
		return fmt.Errorf("delete plugin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPluginNotFound
	}
	return nil
}

func scanPlugin(row pgx.Row) (*domain.Plugin, error) {
	var (
		id string
		p  domain.Plugin
	)
	if err := row.Scan(&id, &p.ArtifactID, &p.GroupID, &p.Version, &p.UploadedBy, &p.Size, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("decode plugin id: %w", err)
	}
	return &p, nil
}
