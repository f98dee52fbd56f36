package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/domain"
)

// Mutator applies a batch of task mutations as one logical operation.
// Implemented by *BulkMutator; consumers depend on the interface so tests
// can substitute fakes.
type Mutator interface {
	Apply(ctx context.Context, workspaceID uuid.UUID, muts []Mutation) error
}

// InvalidationEvent describes which view queries may be stale after a bulk
// mutation: any filter window covering one of the touched days or statuses,
// plus the backlog when an unscheduled row was involved.
type InvalidationEvent struct {
	TaskIDs  []uuid.UUID         `json:"task_ids"`
	Days     []time.Time         `json:"days,omitempty"` // old and new dates, start-of-day, deduped
	Statuses []domain.TaskStatus `json:"statuses,omitempty"`
	Backlog  bool                `json:"backlog,omitempty"`
}

// Invalidator fans an invalidation event out to subscribed views.
type Invalidator interface {
	Invalidate(ctx context.Context, workspaceID uuid.UUID, ev InvalidationEvent) error
}

// NopInvalidator discards invalidation events.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(context.Context, uuid.UUID, InvalidationEvent) error { return nil }

// BulkMutator translates mutation batches into per-task persistence calls.
//
// Writes are issued independently, not as one transaction: when one of N
// updates fails the others may still have been applied. Callers must treat
// an error as "all attempted" and re-fetch rather than trust optimistic
// state.
type BulkMutator struct {
	tasks domain.TaskRepository
	inv   Invalidator
	loc   *time.Location
	now   func() time.Time
}

// NewBulkMutator creates a BulkMutator. inv may be nil.
func NewBulkMutator(tasks domain.TaskRepository, inv Invalidator, loc *time.Location) *BulkMutator {
	if inv == nil {
		inv = NopInvalidator{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &BulkMutator{tasks: tasks, inv: inv, loc: loc, now: time.Now}
}

// Apply validates the whole batch against current rows, then writes each
// task independently. Validation failures abort before any write; write
// failures are collected and joined, and the views touched by the rows
// that did succeed are still invalidated.
func (m *BulkMutator) Apply(ctx context.Context, workspaceID uuid.UUID, muts []Mutation) error {
	if len(muts) == 0 {
		return nil
	}

	current := make([]*domain.Task, len(muts))
	patches := make([]domain.TaskPatch, len(muts))

	// Phase 1: read, derive completed_at, validate merged state. No row is
	// written until the whole batch passes.
	for i, mut := range muts {
		if mut.Patch.Empty() {
			return fmt.Errorf("schedule.BulkMutator.Apply: empty patch for task %s: %w", mut.TaskID, domain.ErrValidation)
		}

		t, err := m.tasks.GetByID(ctx, workspaceID, mut.TaskID)
		if err != nil {
			return fmt.Errorf("schedule.BulkMutator.Apply: read task %s: %w", mut.TaskID, err)
		}

		patch := m.deriveCompletedAt(t, mut.Patch)
		merged := t.Apply(patch)
		if err := merged.Validate(); err != nil {
			return fmt.Errorf("schedule.BulkMutator.Apply: task %s: %w", mut.TaskID, err)
		}

		current[i] = t
		patches[i] = patch
	}

	// Phase 2: independent writes, last writer wins per field at the store.
	var errs []error
	applied := make([]int, 0, len(muts))
	for i, mut := range muts {
		if err := m.tasks.UpdatePatch(ctx, workspaceID, mut.TaskID, patches[i]); err != nil {
			errs = append(errs, fmt.Errorf("schedule.BulkMutator.Apply: write task %s: %w", mut.TaskID, err))
			continue
		}
		applied = append(applied, i)
	}

	if len(applied) > 0 {
		ev := buildInvalidation(current, patches, applied, m.loc)
		if err := m.inv.Invalidate(ctx, workspaceID, ev); err != nil {
			// Stale views recover on their next fetch; the mutation itself
			// succeeded, so don't fail the batch over fan-out.
			log.Warn().Err(err).Str("workspace_id", workspaceID.String()).Msg("bulk mutation: invalidation fan-out failed")
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// deriveCompletedAt fills in the completion timestamp for pure status
// toggles. Call sites performing a full-form edit supply completed_at
// themselves and are left alone.
func (m *BulkMutator) deriveCompletedAt(t *domain.Task, patch domain.TaskPatch) domain.TaskPatch {
	if patch.Status == nil || patch.CompletedAt != nil || patch.ClearCompletedAt {
		return patch
	}
	wasCompleted := t.Status == domain.TaskStatusCompleted
	willComplete := *patch.Status == domain.TaskStatusCompleted
	switch {
	case willComplete && !wasCompleted:
		now := m.now()
		patch.CompletedAt = &now
	case !willComplete && wasCompleted:
		patch.ClearCompletedAt = true
	}
	return patch
}

func buildInvalidation(current []*domain.Task, patches []domain.TaskPatch, applied []int, loc *time.Location) InvalidationEvent {
	ev := InvalidationEvent{}
	days := map[time.Time]struct{}{}
	statuses := map[domain.TaskStatus]struct{}{}

	addDate := func(d *time.Time) {
		if d == nil {
			ev.Backlog = true
			return
		}
		days[domain.StartOfDay(*d, loc)] = struct{}{}
	}

	for _, i := range applied {
		t, p := current[i], patches[i]
		ev.TaskIDs = append(ev.TaskIDs, t.ID)

		addDate(t.Date)
		statuses[t.Status] = struct{}{}

		if p.ClearDate {
			ev.Backlog = true
		} else if p.Date != nil {
			addDate(p.Date)
		}
		if p.Status != nil {
			statuses[*p.Status] = struct{}{}
		}
	}

	for d := range days {
		ev.Days = append(ev.Days, d)
	}
	for s := range statuses {
		ev.Statuses = append(ev.Statuses, s)
	}
	return ev
}
