package schedule_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
)

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
// Mock Mutator / Invalidator
// ---------------------------------------------------------------------------

type mockMutator struct {
	applyFunc func(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error
}

func (m *mockMutator) Apply(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error {
	return m.applyFunc(ctx, workspaceID, muts)
}

type mockInvalidator struct {
	events []schedule.InvalidationEvent
}

func (m *mockInvalidator) Invalidate(_ context.Context, _ uuid.UUID, ev schedule.InvalidationEvent) error {
	m.events = append(m.events, ev)
	return nil
}

// patchByTask indexes a mutation batch by task id.
func patchByTask(muts []schedule.Mutation) map[uuid.UUID]domain.TaskPatch {
	out := make(map[uuid.UUID]domain.TaskPatch, len(muts))
	for _, m := range muts {
		out[m.TaskID] = m.Patch
	}
	return out
}
