package tracker_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/tracker"
)

type mockTaskRepo struct {
	getByIDFunc func(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error)
}

func (m *mockTaskRepo) Create(context.Context, *domain.Task) error { return nil }

func (m *mockTaskRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, workspaceID, id)
}

func (m *mockTaskRepo) List(context.Context, uuid.UUID, domain.TaskFilter) ([]*domain.Task, error) {
	return nil, nil
}

func (m *mockTaskRepo) UpdatePatch(context.Context, uuid.UUID, uuid.UUID, domain.TaskPatch) error {
	return nil
}

func (m *mockTaskRepo) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (m *mockTaskRepo) CountScheduledPerDay(context.Context, uuid.UUID, time.Time, time.Time) ([]domain.DayCount, error) {
	return nil, nil
}

type mockIntegrationRepo struct {
	getByTypeFunc func(ctx context.Context, workspaceID uuid.UUID, typ domain.ProviderType) (*domain.Integration, error)
}

func (m *mockIntegrationRepo) Create(context.Context, *domain.Integration) error { return nil }

func (m *mockIntegrationRepo) GetByID(context.Context, uuid.UUID, uuid.UUID) (*domain.Integration, error) {
	return nil, domain.ErrNotFound
}

func (m *mockIntegrationRepo) GetByType(ctx context.Context, workspaceID uuid.UUID, typ domain.ProviderType) (*domain.Integration, error) {
	if m.getByTypeFunc == nil {
		return nil, domain.ErrNotFound
	}
	return m.getByTypeFunc(ctx, workspaceID, typ)
}

func (m *mockIntegrationRepo) List(context.Context, uuid.UUID) ([]*domain.Integration, error) {
	return nil, nil
}

func (m *mockIntegrationRepo) UpdateSyncPolicy(context.Context, uuid.UUID, uuid.UUID, domain.SyncPolicy) error {
	return nil
}

type mockMutator struct {
	applyFunc func(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error
}

func (m *mockMutator) Apply(ctx context.Context, workspaceID uuid.UUID, muts []schedule.Mutation) error {
	if m.applyFunc == nil {
		return nil
	}
	return m.applyFunc(ctx, workspaceID, muts)
}

type mockProvider struct {
	typ            domain.ProviderType
	remoteStatusFn func(local domain.TaskStatus, t *domain.Task) (string, error)
	pushStatusFn   func(ctx context.Context, t *domain.Task, remoteStatus string) error
}

func (m *mockProvider) Type() domain.ProviderType { return m.typ }

func (m *mockProvider) RemoteStatus(local domain.TaskStatus, t *domain.Task) (string, error) {
	if m.remoteStatusFn == nil {
		return string(local), nil
	}
	return m.remoteStatusFn(local, t)
}

func (m *mockProvider) PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error {
	if m.pushStatusFn == nil {
		return nil
	}
	return m.pushStatusFn(ctx, t, remoteStatus)
}

type mockTransitionProvider struct {
	mockProvider
	listFn func(ctx context.Context, t *domain.Task) ([]tracker.Transition, error)
	pushFn func(ctx context.Context, t *domain.Task, transitionID string) error
}

func (m *mockTransitionProvider) ListTransitions(ctx context.Context, t *domain.Task) ([]tracker.Transition, error) {
	return m.listFn(ctx, t)
}

func (m *mockTransitionProvider) PushTransition(ctx context.Context, t *domain.Task, transitionID string) error {
	if m.pushFn == nil {
		return nil
	}
	return m.pushFn(ctx, t, transitionID)
}

type recordingNotifier struct {
	failures []error
}

func (n *recordingNotifier) NotifySyncFailure(_ context.Context, _ *domain.Task, err error) {
	n.failures = append(n.failures, err)
}
