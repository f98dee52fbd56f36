package schedule_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
)

func backlogContainer() domain.Container {
	return domain.Container{Kind: domain.ContainerBacklog}
}

func dayContainer(t time.Time) domain.Container {
	return domain.Container{Kind: domain.ContainerDay, Day: t}
}

func laneContainer(l domain.Lane) domain.Container {
	return domain.Container{Kind: domain.ContainerLane, Lane: l}
}

func TestResolve_SameDayDropIsNoOp(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	// Scheduled at 14:30; dropped onto the same calendar day.
	scheduled := time.Date(2026, 3, 4, 14, 30, 0, 0, loc)
	task := &domain.Task{ID: uuid.New(), Date: &scheduled}

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      dayContainer(domain.StartOfDay(scheduled, loc)),
		Target:      dayContainer(time.Date(2026, 3, 4, 0, 0, 0, 0, loc)),
		Task:        task,
		TargetItems: []uuid.UUID{task.ID},
		Location:    loc,
	})

	require.NoError(t, err)
	assert.Nil(t, muts, "same-day drop must produce zero mutations")
}

func TestResolve_BacklogDropMutatesOnlyDraggedTask(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	scheduled := time.Date(2026, 3, 4, 0, 0, 0, 0, loc)
	dragged := &domain.Task{ID: uuid.New(), Date: &scheduled, Order: 1}
	other1, other2 := uuid.New(), uuid.New()

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      dayContainer(scheduled),
		Target:      backlogContainer(),
		Task:        dragged,
		TargetItems: []uuid.UUID{other1, dragged.ID, other2},
		Location:    loc,
	})

	require.NoError(t, err)
	require.Len(t, muts, 1, "only the dragged task is mutated on a backlog drop")
	assert.Equal(t, dragged.ID, muts[0].TaskID)
	assert.True(t, muts[0].Patch.ClearDate)
	require.NotNil(t, muts[0].Patch.Order)
	assert.Equal(t, 1, *muts[0].Patch.Order, "order is the new index within the backlog")
	assert.Nil(t, muts[0].Patch.Status)
}

func TestResolve_BacklogIdempotence(t *testing.T) {
	t.Parallel()

	// Already unscheduled; moving to backlog again is the same-date rule
	// applied to date = null.
	dragged := &domain.Task{ID: uuid.New(), Order: 2}

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      backlogContainer(),
		Target:      backlogContainer(),
		Task:        dragged,
		TargetItems: []uuid.UUID{dragged.ID},
		Location:    time.UTC,
	})

	require.NoError(t, err)
	assert.Nil(t, muts)
}

func TestResolve_DateColumnResequencesWholeColumn(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	wednesday := time.Date(2026, 3, 4, 0, 0, 0, 0, loc)

	// T is backlog (date=null, order=2); Wednesday already holds A, B.
	taskT := &domain.Task{ID: uuid.New(), Order: 2}
	taskA, taskB := uuid.New(), uuid.New()

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      backlogContainer(),
		Target:      dayContainer(wednesday),
		Task:        taskT,
		TargetItems: []uuid.UUID{taskT.ID, taskA, taskB}, // dropped at position 0
		Location:    loc,
	})

	require.NoError(t, err)
	require.Len(t, muts, 3, "exactly {T, A, B}, no other backlog task")

	patches := patchByTask(muts)
	for i, id := range []uuid.UUID{taskT.ID, taskA, taskB} {
		p, ok := patches[id]
		require.True(t, ok)
		require.NotNil(t, p.Date)
		assert.Equal(t, wednesday, *p.Date, "date normalized to start of day")
		require.NotNil(t, p.Order)
		assert.Equal(t, i, *p.Order)
	}
}

func TestResolve_DateColumnOrderIsDense(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	day := time.Date(2026, 3, 6, 0, 0, 0, 0, loc)
	dragged := &domain.Task{ID: uuid.New()}

	items := []uuid.UUID{uuid.New(), uuid.New(), dragged.ID, uuid.New()}
	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      backlogContainer(),
		Target:      dayContainer(day),
		Task:        dragged,
		TargetItems: items,
		Location:    loc,
	})
	require.NoError(t, err)
	require.Len(t, muts, len(items))

	seen := make(map[int]bool)
	for _, m := range muts {
		require.NotNil(t, m.Patch.Order)
		seen[*m.Patch.Order] = true
	}
	for i := range items {
		assert.True(t, seen[i], "order %d missing: sequence must be a contiguous 0..n-1", i)
	}
}

func TestResolve_CrossDayDropResequencesSourceColumn(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	tuesday := monday.AddDate(0, 0, 1)

	// Monday holds A, B, C; B is dragged onto Tuesday, which is empty.
	taskA, taskC := uuid.New(), uuid.New()
	dragged := &domain.Task{ID: uuid.New(), Date: &monday, Order: 1}

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      dayContainer(monday),
		Target:      dayContainer(tuesday),
		Task:        dragged,
		TargetItems: []uuid.UUID{dragged.ID},
		SourceItems: []uuid.UUID{taskA, taskC},
		Location:    loc,
	})
	require.NoError(t, err)
	require.Len(t, muts, 3, "dragged task plus both remaining source members")

	patches := patchByTask(muts)

	p := patches[dragged.ID]
	require.NotNil(t, p.Date)
	assert.Equal(t, tuesday, *p.Date)

	// The source column closes its gap: A and C become 0 and 1 again,
	// without their date being touched.
	for i, id := range []uuid.UUID{taskA, taskC} {
		p, ok := patches[id]
		require.True(t, ok, "remaining source member must be re-sequenced")
		require.NotNil(t, p.Order)
		assert.Equal(t, i, *p.Order)
		assert.Nil(t, p.Date)
		assert.False(t, p.ClearDate)
		assert.Nil(t, p.Status)
	}
}

func TestResolve_CrossLaneDropResequencesSourceLane(t *testing.T) {
	t.Parallel()

	// Todo holds X, Y; Y is dragged into Done behind Z.
	taskX, taskZ := uuid.New(), uuid.New()
	dragged := &domain.Task{ID: uuid.New(), Status: domain.TaskStatusPending}

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      laneContainer(domain.LaneTodo),
		Target:      laneContainer(domain.LaneDone),
		Task:        dragged,
		TargetItems: []uuid.UUID{taskZ, dragged.ID},
		SourceItems: []uuid.UUID{taskX},
		Location:    time.UTC,
	})
	require.NoError(t, err)
	require.Len(t, muts, 3)

	patches := patchByTask(muts)
	p, ok := patches[taskX]
	require.True(t, ok)
	require.NotNil(t, p.Order)
	assert.Equal(t, 0, *p.Order)
	assert.Nil(t, p.Status, "the remaining source member keeps its status")
}

func TestResolve_BacklogSourceIsNotResequenced(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	wednesday := time.Date(2026, 3, 4, 0, 0, 0, 0, loc)
	dragged := &domain.Task{ID: uuid.New()}
	remaining := uuid.New()

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      backlogContainer(),
		Target:      dayContainer(wednesday),
		Task:        dragged,
		TargetItems: []uuid.UUID{dragged.ID},
		SourceItems: []uuid.UUID{remaining},
		Location:    loc,
	})
	require.NoError(t, err)
	require.Len(t, muts, 1, "the backlog keeps its sparse order on drag-out")
	assert.Equal(t, dragged.ID, muts[0].TaskID)
}

func TestResolve_KanbanLaneSetsStatusAndOrder(t *testing.T) {
	t.Parallel()

	dragged := &domain.Task{ID: uuid.New(), Status: domain.TaskStatusPending}
	other := uuid.New()

	muts, err := schedule.Resolve(schedule.DropEvent{
		Source:      laneContainer(domain.LaneTodo),
		Target:      laneContainer(domain.LaneDone),
		Task:        dragged,
		TargetItems: []uuid.UUID{other, dragged.ID},
		Location:    time.UTC,
	})

	require.NoError(t, err)
	require.Len(t, muts, 2, "every task in the lane is re-sequenced")

	patches := patchByTask(muts)
	for i, id := range []uuid.UUID{other, dragged.ID} {
		p := patches[id]
		require.NotNil(t, p.Status)
		assert.Equal(t, domain.TaskStatusCompleted, *p.Status)
		require.NotNil(t, p.Order)
		assert.Equal(t, i, *p.Order)
		assert.Nil(t, p.CompletedAt, "completed_at derivation belongs to the mutator")
	}
}

func TestResolve_DraggedTaskMissingFromTarget(t *testing.T) {
	t.Parallel()

	dragged := &domain.Task{ID: uuid.New()}

	_, err := schedule.Resolve(schedule.DropEvent{
		Source:      backlogContainer(),
		Target:      dayContainer(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)),
		Task:        dragged,
		TargetItems: []uuid.UUID{uuid.New()},
		Location:    time.UTC,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestResolve_MissingSnapshotRejected(t *testing.T) {
	t.Parallel()

	_, err := schedule.Resolve(schedule.DropEvent{
		Source: backlogContainer(),
		Target: backlogContainer(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
