package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planar-app/planar/internal/domain"
)

// ---------------------------------------------------------------------------
// Lane <-> status mapping
// ---------------------------------------------------------------------------

func TestLane_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lane   domain.Lane
		want   domain.TaskStatus
		wantOK bool
	}{
		{domain.LaneTodo, domain.TaskStatusPending, true},
		{domain.LaneInProgress, domain.TaskStatusInProgress, true},
		{domain.LaneDone, domain.TaskStatusCompleted, true},
		{domain.Lane("archived"), "", false},
		{domain.Lane(""), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.lane), func(t *testing.T) {
			t.Parallel()

			got, ok := tt.lane.Status()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLaneForStatus_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.TaskStatus{
		domain.TaskStatusPending,
		domain.TaskStatusInProgress,
		domain.TaskStatusCompleted,
	} {
		lane := domain.LaneForStatus(status)
		got, ok := lane.Status()
		require.True(t, ok)
		assert.Equal(t, status, got)
	}
}

// ---------------------------------------------------------------------------
// Container parsing
// ---------------------------------------------------------------------------

func TestParseContainer(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+9", 9*3600)

	t.Run("backlog_token", func(t *testing.T) {
		t.Parallel()

		c, err := domain.ParseContainer("backlog", loc)
		require.NoError(t, err)
		assert.Equal(t, domain.ContainerBacklog, c.Kind)
		assert.Equal(t, "backlog", c.String())
	})

	t.Run("lane_tokens", func(t *testing.T) {
		t.Parallel()

		for _, lane := range []string{"todo", "in-progress", "done"} {
			c, err := domain.ParseContainer(lane, loc)
			require.NoError(t, err)
			assert.Equal(t, domain.ContainerLane, c.Kind)
			assert.Equal(t, lane, c.String())
		}
	})

	t.Run("date_normalized_to_start_of_day", func(t *testing.T) {
		t.Parallel()

		c, err := domain.ParseContainer("2026-03-04", loc)
		require.NoError(t, err)
		assert.Equal(t, domain.ContainerDay, c.Kind)
		assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), c.Day)
		assert.Equal(t, "2026-03-04", c.String())
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		t.Parallel()

		_, err := domain.ParseContainer("next tuesday", loc)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

// ---------------------------------------------------------------------------
// Calendar-day comparison
// ---------------------------------------------------------------------------

func TestSameCalendarDay(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	morning := time.Date(2026, 3, 4, 8, 0, 0, 0, loc)
	evening := time.Date(2026, 3, 4, 23, 30, 0, 0, loc)
	nextDay := time.Date(2026, 3, 5, 0, 0, 0, 0, loc)

	assert.True(t, domain.SameCalendarDay(&morning, &evening, loc), "time-of-day is ignored")
	assert.False(t, domain.SameCalendarDay(&morning, &nextDay, loc))
	assert.True(t, domain.SameCalendarDay(nil, nil, loc), "two backlog dates compare equal")
	assert.False(t, domain.SameCalendarDay(&morning, nil, loc))
	assert.False(t, domain.SameCalendarDay(nil, &morning, loc))
}

// ---------------------------------------------------------------------------
// Task invariants
// ---------------------------------------------------------------------------

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	projectID := uuid.New()
	milestoneID := uuid.New()
	externalID := "42"
	src := domain.ProviderGitHub

	base := func() *domain.Task {
		return &domain.Task{
			ID:          uuid.New(),
			WorkspaceID: uuid.New(),
			Name:        "Write report",
			Status:      domain.TaskStatusPending,
			Creator:     uuid.New(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, base().Validate())
	})

	t.Run("completed_requires_completed_at", func(t *testing.T) {
		t.Parallel()

		task := base()
		task.Status = domain.TaskStatusCompleted
		assert.ErrorIs(t, task.Validate(), domain.ErrValidation)

		task.CompletedAt = &now
		assert.NoError(t, task.Validate())
	})

	t.Run("completed_at_forbidden_otherwise", func(t *testing.T) {
		t.Parallel()

		task := base()
		task.CompletedAt = &now
		assert.ErrorIs(t, task.Validate(), domain.ErrValidation)
	})

	t.Run("imported_requires_external_id", func(t *testing.T) {
		t.Parallel()

		task := base()
		task.IntegrationSource = &src
		assert.ErrorIs(t, task.Validate(), domain.ErrValidation)

		task.ExternalID = &externalID
		assert.NoError(t, task.Validate())
	})

	t.Run("milestone_requires_project", func(t *testing.T) {
		t.Parallel()

		task := base()
		task.MilestoneID = &milestoneID
		assert.ErrorIs(t, task.Validate(), domain.ErrValidation)

		task.ProjectID = &projectID
		assert.NoError(t, task.Validate())
	})
}

func TestTask_Apply(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	status := domain.TaskStatusCompleted
	order := 3

	orig := &domain.Task{
		ID:     uuid.New(),
		Name:   "Original",
		Status: domain.TaskStatusPending,
		Date:   &date,
		Order:  0,
	}

	merged := orig.Apply(domain.TaskPatch{Status: &status, Order: &order, ClearDate: true})

	assert.Equal(t, domain.TaskStatusCompleted, merged.Status)
	assert.Equal(t, 3, merged.Order)
	assert.Nil(t, merged.Date)

	// Original must be untouched.
	assert.Equal(t, domain.TaskStatusPending, orig.Status)
	assert.NotNil(t, orig.Date)
}

func TestTaskPatch_Empty(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.TaskPatch{}.Empty())
	assert.False(t, domain.TaskPatch{ClearDate: true}.Empty())

	name := "x"
	assert.False(t, domain.TaskPatch{Name: &name}.Empty())
}

// ---------------------------------------------------------------------------
// Sync policy defaults
// ---------------------------------------------------------------------------

func TestSyncPolicy_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   domain.SyncPolicy
		want domain.SyncPolicy
	}{
		{domain.SyncAuto, domain.SyncAuto},
		{domain.SyncPrompt, domain.SyncPrompt},
		{domain.SyncNever, domain.SyncNever},
		{domain.SyncPolicy(""), domain.SyncNever},
		{domain.SyncPolicy("always"), domain.SyncNever},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Normalize())
	}
}
