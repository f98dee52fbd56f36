package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Milestone always belongs to one project; a task may only reference a
// milestone of its own project.
type Milestone struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]*Project, error)
}

type MilestoneRepository interface {
	Create(ctx context.Context, m *Milestone) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Milestone, error)
	ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*Milestone, error)
}
