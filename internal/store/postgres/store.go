package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planar-app/planar/internal/domain"
)

type Store struct {
	pool         *pgxpool.Pool
	workspaces   *WorkspaceRepo
	tasks        *TaskRepo
	projects     *ProjectRepo
	milestones   *MilestoneRepo
	integrations *IntegrationRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:         pool,
		workspaces:   NewWorkspaceRepo(pool),
		tasks:        NewTaskRepo(pool),
		projects:     NewProjectRepo(pool),
		milestones:   NewMilestoneRepo(pool),
		integrations: NewIntegrationRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Workspaces() domain.WorkspaceRepository     { return s.workspaces }
func (s *Store) Tasks() domain.TaskRepository               { return s.tasks }
func (s *Store) Projects() domain.ProjectRepository         { return s.projects }
func (s *Store) Milestones() domain.MilestoneRepository     { return s.milestones }
func (s *Store) Integrations() domain.IntegrationRepository { return s.integrations }
