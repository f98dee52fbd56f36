package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/server/middleware"
	"github.com/planar-app/planar/internal/store/redis"
	"github.com/planar-app/planar/internal/tracker"
)

// ---------------------------------------------------------------------------
// Context helpers injecting workspace/user identity for DoCtx requests.
// ---------------------------------------------------------------------------

func workspaceCtx(workspaceID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyWorkspaceID, workspaceID)
	return ctx
}

func userCtx(workspaceID, userID uuid.UUID) context.Context {
	ctx := workspaceCtx(workspaceID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	workspaces   domain.WorkspaceRepository
	tasks        domain.TaskRepository
	projects     domain.ProjectRepository
	milestones   domain.MilestoneRepository
	integrations domain.IntegrationRepository
}

func (m *mockDataStore) Workspaces() domain.WorkspaceRepository     { return m.workspaces }
func (m *mockDataStore) Tasks() domain.TaskRepository               { return m.tasks }
func (m *mockDataStore) Projects() domain.ProjectRepository         { return m.projects }
func (m *mockDataStore) Milestones() domain.MilestoneRepository     { return m.milestones }
func (m *mockDataStore) Integrations() domain.IntegrationRepository { return m.integrations }

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc      func(ctx context.Context, t *domain.Task) error
	getByIDFunc     func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error)
	listFunc        func(ctx context.Context, workspaceID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	updatePatchFunc func(ctx context.Context, workspaceID, id uuid.UUID, patch domain.TaskPatch) error
	deleteFunc      func(ctx context.Context, workspaceID, id uuid.UUID) error
	countPerDayFunc func(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]domain.DayCount, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockTaskRepo) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return m.listFunc(ctx, workspaceID, filter)
}

func (m *mockTaskRepo) UpdatePatch(ctx context.Context, workspaceID, id uuid.UUID, patch domain.TaskPatch) error {
	return m.updatePatchFunc(ctx, workspaceID, id, patch)
}

func (m *mockTaskRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	return m.deleteFunc(ctx, workspaceID, id)
}

func (m *mockTaskRepo) CountScheduledPerDay(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]domain.DayCount, error) {
	return m.countPerDayFunc(ctx, workspaceID, start, end)
}

// ---------------------------------------------------------------------------
// Mock ProjectRepository / MilestoneRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc  func(ctx context.Context, p *domain.Project) error
	getByIDFunc func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error)
	listFunc    func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Project, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockProjectRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Project, error) {
	return m.listFunc(ctx, workspaceID)
}

type mockMilestoneRepo struct {
	createFunc        func(ctx context.Context, m *domain.Milestone) error
	getByIDFunc       func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Milestone, error)
	listByProjectFunc func(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*domain.Milestone, error)
}

func (m *mockMilestoneRepo) Create(ctx context.Context, ms *domain.Milestone) error {
	return m.createFunc(ctx, ms)
}

func (m *mockMilestoneRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Milestone, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockMilestoneRepo) ListByProject(ctx context.Context, workspaceID, projectID uuid.UUID) ([]*domain.Milestone, error) {
	return m.listByProjectFunc(ctx, workspaceID, projectID)
}

// ---------------------------------------------------------------------------
// Mock IntegrationRepository
// ---------------------------------------------------------------------------

type mockIntegrationRepo struct {
	createFunc           func(ctx context.Context, i *domain.Integration) error
	getByIDFunc          func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Integration, error)
	getByTypeFunc        func(ctx context.Context, workspaceID uuid.UUID, typ domain.ProviderType) (*domain.Integration, error)
	listFunc             func(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Integration, error)
	updateSyncPolicyFunc func(ctx context.Context, workspaceID, id uuid.UUID, policy domain.SyncPolicy) error
}

func (m *mockIntegrationRepo) Create(ctx context.Context, i *domain.Integration) error {
	return m.createFunc(ctx, i)
}

func (m *mockIntegrationRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Integration, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockIntegrationRepo) GetByType(ctx context.Context, workspaceID uuid.UUID, typ domain.ProviderType) (*domain.Integration, error) {
	return m.getByTypeFunc(ctx, workspaceID, typ)
}

func (m *mockIntegrationRepo) List(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Integration, error) {
	return m.listFunc(ctx, workspaceID)
}

func (m *mockIntegrationRepo) UpdateSyncPolicy(ctx context.Context, workspaceID, id uuid.UUID, policy domain.SyncPolicy) error {
	return m.updateSyncPolicyFunc(ctx, workspaceID, id, policy)
}

// ---------------------------------------------------------------------------
// Mock services
// ---------------------------------------------------------------------------

type mockMutator struct {
	applyFunc func(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error
}

func (m *mockMutator) Apply(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error {
	if m.applyFunc == nil {
		return nil
	}
	return m.applyFunc(ctx, workspaceID, muts)
}

type mockPlanner struct {
	runFunc      func(ctx context.Context, workspaceID uuid.UUID) (*schedule.PlanResponse, error)
	rollbackFunc func(ctx context.Context, plan *schedule.PlanResponse) error
	state        schedule.PlanState
	lastPlan     *schedule.PlanResponse
}

func (m *mockPlanner) Run(ctx context.Context, workspaceID uuid.UUID) (*schedule.PlanResponse, error) {
	return m.runFunc(ctx, workspaceID)
}

func (m *mockPlanner) Rollback(ctx context.Context, plan *schedule.PlanResponse) error {
	return m.rollbackFunc(ctx, plan)
}

func (m *mockPlanner) State(uuid.UUID) schedule.PlanState {
	if m.state == "" {
		return schedule.PlanStateIdle
	}
	return m.state
}

func (m *mockPlanner) LastPlan(uuid.UUID) (*schedule.PlanResponse, bool) {
	return m.lastPlan, m.lastPlan != nil
}

type mockSyncer struct {
	toggleFunc func(ctx context.Context, workspaceID, taskID uuid.UUID, completed bool) (*tracker.Outcome, error)
	decideFunc func(ctx context.Context, workspaceID, taskID uuid.UUID, decision tracker.Decision) (*tracker.Outcome, error)
}

func (m *mockSyncer) Toggle(ctx context.Context, workspaceID, taskID uuid.UUID, completed bool) (*tracker.Outcome, error) {
	return m.toggleFunc(ctx, workspaceID, taskID, completed)
}

func (m *mockSyncer) Decide(ctx context.Context, workspaceID, taskID uuid.UUID, decision tracker.Decision) (*tracker.Outcome, error) {
	return m.decideFunc(ctx, workspaceID, taskID, decision)
}

type mockSettings struct {
	views   map[string]redis.ViewSetting
	backlog map[uuid.UUID]bool
}

func newMockSettings() *mockSettings {
	return &mockSettings{
		views:   make(map[string]redis.ViewSetting),
		backlog: make(map[uuid.UUID]bool),
	}
}

func (m *mockSettings) GetViewSetting(_ context.Context, _, _ uuid.UUID, key string) (redis.ViewSetting, error) {
	if s, ok := m.views[key]; ok {
		return s, nil
	}
	return redis.DefaultViewSetting(), nil
}

func (m *mockSettings) SaveViewSetting(_ context.Context, _, _ uuid.UUID, key string, s redis.ViewSetting) error {
	m.views[key] = s
	return nil
}

func (m *mockSettings) GetBacklogPanelOpen(_ context.Context, _, userID uuid.UUID) (bool, error) {
	if open, ok := m.backlog[userID]; ok {
		return open, nil
	}
	return true, nil
}

func (m *mockSettings) SetBacklogPanelOpen(_ context.Context, _, userID uuid.UUID, open bool) error {
	m.backlog[userID] = open
	return nil
}
