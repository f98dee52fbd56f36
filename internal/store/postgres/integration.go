package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planar-app/planar/internal/domain"
)

type IntegrationRepo struct {
	pool *pgxpool.Pool
}

func NewIntegrationRepo(pool *pgxpool.Pool) *IntegrationRepo {
	return &IntegrationRepo{pool: pool}
}

const integrationColumns = `id, workspace_id, type, status, sync_status, default_project_id, base_url, created_at, updated_at`

func (r *IntegrationRepo) Create(ctx context.Context, i *domain.Integration) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO integrations (id, workspace_id, type, status, sync_status, default_project_id, base_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		i.ID, i.WorkspaceID, i.Type, i.Status, i.SyncStatus, i.DefaultProjectID, i.BaseURL, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("integrationRepo.Create: %w", err)
	}

	return nil
}

func (r *IntegrationRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Integration, error) {
	i, err := r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	))
	if err != nil {
		return nil, fmt.Errorf("integrationRepo.GetByID: %w", err)
	}

	return i, nil
}

func (r *IntegrationRepo) GetByType(ctx context.Context, workspaceID uuid.UUID, typ domain.ProviderType) (*domain.Integration, error) {
	i, err := r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE workspace_id = $1 AND type = $2`,
		workspaceID, typ,
	))
	if err != nil {
		return nil, fmt.Errorf("integrationRepo.GetByType: %w", err)
	}

	return i, nil
}

func (r *IntegrationRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Integration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE workspace_id = $1 ORDER BY type`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("integrationRepo.List: %w", err)
	}
	defer rows.Close()

	var integrations []*domain.Integration
	for rows.Next() {
		var i domain.Integration
		if err := rows.Scan(
			&i.ID, &i.WorkspaceID, &i.Type, &i.Status, &i.SyncStatus,
			&i.DefaultProjectID, &i.BaseURL, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("integrationRepo.List: scan: %w", err)
		}
		integrations = append(integrations, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("integrationRepo.List: rows: %w", err)
	}

	return integrations, nil
}

func (r *IntegrationRepo) UpdateSyncPolicy(ctx context.Context, workspaceID, id uuid.UUID, policy domain.SyncPolicy) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE integrations SET sync_status = $1, updated_at = now() WHERE workspace_id = $2 AND id = $3`,
		policy, workspaceID, id,
	)
	if err != nil {
		return fmt.Errorf("integrationRepo.UpdateSyncPolicy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("integrationRepo.UpdateSyncPolicy: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *IntegrationRepo) scanOne(row pgx.Row) (*domain.Integration, error) {
	var i domain.Integration

	err := row.Scan(
		&i.ID, &i.WorkspaceID, &i.Type, &i.Status, &i.SyncStatus,
		&i.DefaultProjectID, &i.BaseURL, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &i, nil
}
