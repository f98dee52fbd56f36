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

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO projects (id, workspace_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.WorkspaceID, p.Name, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("projectRepo.Create: %w", err)
	}

	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project

	err := r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, name, created_at FROM projects WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	).Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("projectRepo.GetByID: %w", err)
	}

	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, name, created_at FROM projects
		 WHERE workspace_id = $1 ORDER BY created_at LIMIT 1000`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("projectRepo.List: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("projectRepo.List: scan: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("projectRepo.List: rows: %w", err)
	}

	return projects, nil
}

type MilestoneRepo struct {
	pool *pgxpool.Pool
}

func NewMilestoneRepo(pool *pgxpool.Pool) *MilestoneRepo {
	return &MilestoneRepo{pool: pool}
}

func (r *MilestoneRepo) Create(ctx context.Context, m *domain.Milestone) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO milestones (id, workspace_id, project_id, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.WorkspaceID, m.ProjectID, m.Name, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("milestoneRepo.Create: %w", err)
	}

	return nil
}

func (r *MilestoneRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Milestone, error) {
	var m domain.Milestone

	err := r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, project_id, name, created_at
		 FROM milestones WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	).Scan(&m.ID, &m.WorkspaceID, &m.ProjectID, &m.Name, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("milestoneRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("milestoneRepo.GetByID: %w", err)
	}

	return &m, nil
}

func (r *MilestoneRepo) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*domain.Milestone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, workspace_id, project_id, name, created_at
		 FROM milestones WHERE workspace_id = $1 AND project_id = $2
		 ORDER BY created_at LIMIT 1000`,
		workspaceID, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("milestoneRepo.ListByProject: %w", err)
	}
	defer rows.Close()

	var milestones []*domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.WorkspaceID, &m.ProjectID, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("milestoneRepo.ListByProject: scan: %w", err)
		}
		milestones = append(milestones, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("milestoneRepo.ListByProject: rows: %w", err)
	}

	return milestones, nil
}
