package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Lane is a kanban column token as it appears in drag events.
type Lane string

const (
	LaneTodo       Lane = "todo"
	LaneInProgress Lane = "in-progress"
	LaneDone       Lane = "done"
)

// Status maps a kanban lane to the task status it represents.
func (l Lane) Status() (TaskStatus, bool) {
	switch l {
	case LaneTodo:
		return TaskStatusPending, true
	case LaneInProgress:
		return TaskStatusInProgress, true
	case LaneDone:
		return TaskStatusCompleted, true
	default:
		return "", false
	}
}

// LaneForStatus maps a task status to its kanban lane.
func LaneForStatus(s TaskStatus) Lane {
	switch s {
	case TaskStatusInProgress:
		return LaneInProgress
	case TaskStatusCompleted:
		return LaneDone
	default:
		return LaneTodo
	}
}

// Task is the central entity. Date nil means the task sits in the backlog.
// Order is only meaningful relative to siblings in the same container
// (a day, the backlog, or a kanban lane).
type Task struct {
	ID          uuid.UUID  `json:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Status      TaskStatus `json:"status"`
	Order       int        `json:"order"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	ProjectID   *uuid.UUID  `json:"project_id,omitempty"`
	MilestoneID *uuid.UUID  `json:"milestone_id,omitempty"`
	TagIDs      []uuid.UUID `json:"tag_ids,omitempty"`
	Priority    *int        `json:"priority,omitempty"`

	IntegrationSource *ProviderType   `json:"integration_source,omitempty"`
	ExternalID        *string         `json:"external_id,omitempty"`
	ExternalData      json.RawMessage `json:"external_data,omitempty"`
	Host              *string         `json:"host,omitempty"`

	Assignee  *uuid.UUID `json:"assignee,omitempty"`
	Creator   uuid.UUID  `json:"creator"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Imported reports whether the task originates from an external tracker.
// Name and description of imported tasks are authoritative on the remote
// side and read-only locally.
func (t *Task) Imported() bool {
	return t.IntegrationSource != nil
}

// Validate checks the cross-field invariants of a task row.
func (t *Task) Validate() error {
	if !t.Status.Valid() {
		return fmt.Errorf("status %q: %w", t.Status, ErrValidation)
	}
	if (t.Status == TaskStatusCompleted) != (t.CompletedAt != nil) {
		return fmt.Errorf("completed_at must be set exactly when status is completed: %w", ErrValidation)
	}
	if t.IntegrationSource != nil && (t.ExternalID == nil || *t.ExternalID == "") {
		return fmt.Errorf("integration_source requires external_id: %w", ErrValidation)
	}
	if t.MilestoneID != nil && t.ProjectID == nil {
		return fmt.Errorf("milestone_id requires project_id: %w", ErrValidation)
	}
	return nil
}

// StartOfDay normalizes an instant to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameCalendarDay reports whether two nullable scheduling dates fall on the
// same calendar day in loc, ignoring time-of-day. Two nil dates (backlog)
// compare equal.
func SameCalendarDay(a, b *time.Time, loc *time.Location) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// TaskPatch is a partial update. Nil pointer fields are left untouched;
// the Clear* flags distinguish "set to null" from "no change".
type TaskPatch struct {
	Name        *string
	Description *string

	Date      *time.Time
	ClearDate bool

	Status *TaskStatus
	Order  *int

	CompletedAt      *time.Time
	ClearCompletedAt bool

	ProjectID      *uuid.UUID
	ClearProject   bool
	MilestoneID    *uuid.UUID
	ClearMilestone bool
	TagIDs         *[]uuid.UUID
	Priority       *int
	ClearPriority  bool
	Assignee       *uuid.UUID
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Name == nil && p.Description == nil &&
		p.Date == nil && !p.ClearDate &&
		p.Status == nil && p.Order == nil &&
		p.CompletedAt == nil && !p.ClearCompletedAt &&
		p.ProjectID == nil && !p.ClearProject &&
		p.MilestoneID == nil && !p.ClearMilestone &&
		p.TagIDs == nil && p.Priority == nil && !p.ClearPriority &&
		p.Assignee == nil
}

// Apply returns a copy of t with the patch merged in. The copy is used for
// invariant validation before the row is written.
func (t *Task) Apply(p TaskPatch) Task {
	out := *t
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ClearDate {
		out.Date = nil
	} else if p.Date != nil {
		d := *p.Date
		out.Date = &d
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Order != nil {
		out.Order = *p.Order
	}
	if p.ClearCompletedAt {
		out.CompletedAt = nil
	} else if p.CompletedAt != nil {
		c := *p.CompletedAt
		out.CompletedAt = &c
	}
	if p.ClearProject {
		out.ProjectID = nil
	} else if p.ProjectID != nil {
		id := *p.ProjectID
		out.ProjectID = &id
	}
	if p.ClearMilestone {
		out.MilestoneID = nil
	} else if p.MilestoneID != nil {
		id := *p.MilestoneID
		out.MilestoneID = &id
	}
	if p.TagIDs != nil {
		out.TagIDs = append([]uuid.UUID(nil), (*p.TagIDs)...)
	}
	if p.ClearPriority {
		out.Priority = nil
	} else if p.Priority != nil {
		pr := *p.Priority
		out.Priority = &pr
	}
	if p.Assignee != nil {
		a := *p.Assignee
		out.Assignee = &a
	}
	return out
}

// TaskFilter selects tasks within one workspace. Zero values mean
// "no constraint" except Unscheduled, which restricts to backlog rows.
type TaskFilter struct {
	Statuses          []TaskStatus
	ProjectID         *uuid.UUID
	MilestoneID       *uuid.UUID
	IntegrationSource *ProviderType
	TagIDs            []uuid.UUID
	Priority          *int
	DateFrom          *time.Time
	DateTo            *time.Time
	Unscheduled       bool
	Query             string // fuzzy match over name, backlog search
	Limit             int
}

// DayCount is one row of the per-day capacity query.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, workspaceID uuid.UUID, filter TaskFilter) ([]*Task, error)
	UpdatePatch(ctx context.Context, workspaceID, id uuid.UUID, patch TaskPatch) error
	Delete(ctx context.Context, workspaceID, id uuid.UUID) error

	// CountScheduledPerDay returns one row per calendar day in [start, end]
	// that has at least one scheduled task.
	CountScheduledPerDay(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]DayCount, error)
}
