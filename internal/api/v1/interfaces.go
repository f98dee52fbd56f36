package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/store/redis"
	"github.com/planar-app/planar/internal/tracker"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Workspaces() domain.WorkspaceRepository
	Tasks() domain.TaskRepository
	Projects() domain.ProjectRepository
	Milestones() domain.MilestoneRepository
	Integrations() domain.IntegrationRepository
}

// PlannerService abstracts the auto-planner for handler testing.
// *schedule.Planner satisfies this interface.
type PlannerService interface {
	Run(ctx context.Context, workspaceID uuid.UUID) (*schedule.PlanResponse, error)
	Rollback(ctx context.Context, plan *schedule.PlanResponse) error
	State(workspaceID uuid.UUID) schedule.PlanState
	LastPlan(workspaceID uuid.UUID) (*schedule.PlanResponse, bool)
}

// SyncService abstracts the completion-sync state machine for handler
// testing. *tracker.Syncer satisfies this interface.
type SyncService interface {
	Toggle(ctx context.Context, workspaceID, taskID uuid.UUID, completed bool) (*tracker.Outcome, error)
	Decide(ctx context.Context, workspaceID, taskID uuid.UUID, decision tracker.Decision) (*tracker.Outcome, error)
}

// SettingsStore abstracts the per-user view state storage for handler
// testing. *redis.Client satisfies this interface.
type SettingsStore interface {
	GetViewSetting(ctx context.Context, workspaceID, userID uuid.UUID, key string) (redis.ViewSetting, error)
	SaveViewSetting(ctx context.Context, workspaceID, userID uuid.UUID, key string, s redis.ViewSetting) error
	GetBacklogPanelOpen(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	SetBacklogPanelOpen(ctx context.Context, workspaceID, userID uuid.UUID, open bool) error
}
