package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
)

// DropEvent is one drag-end gesture: a task moved from a source container
// into a target container. TargetItems is the full ordered id list of the
// target container after the drop; SourceItems is the ordered id list left
// in the source container, needed to keep its order dense once the
// dragged task is gone.
type DropEvent struct {
	Source      domain.Container
	Target      domain.Container
	Task        *domain.Task // snapshot of the dragged task
	TargetItems []uuid.UUID
	SourceItems []uuid.UUID
	Location    *time.Location
}

// Mutation is one task's share of a bulk update.
type Mutation struct {
	TaskID uuid.UUID
	Patch  domain.TaskPatch
}

// Resolve maps a drop event to the set of task mutations it implies.
// A nil, nil return means the drop is a no-op and nothing should be written.
//
// Date-column and lane drops re-sequence every member of the target
// container, and the remaining members of a day or lane source, so the
// persisted order stays dense on both sides; backlog drops touch only
// the dragged task, and a backlog source is never re-sequenced.
func Resolve(ev DropEvent) ([]Mutation, error) {
	if ev.Task == nil {
		return nil, fmt.Errorf("schedule.Resolve: missing task snapshot: %w", domain.ErrValidation)
	}
	loc := ev.Location
	if loc == nil {
		loc = time.Local
	}

	switch ev.Target.Kind {
	case domain.ContainerBacklog:
		// Dropping an already-unscheduled task onto the backlog is the
		// same-date rule applied to date = null.
		if ev.Task.Date == nil {
			return nil, nil
		}
		idx := indexOf(ev.TargetItems, ev.Task.ID)
		if idx < 0 {
			return nil, fmt.Errorf("schedule.Resolve: dragged task %s not in target items: %w", ev.Task.ID, domain.ErrValidation)
		}
		return []Mutation{{
			TaskID: ev.Task.ID,
			Patch:  domain.TaskPatch{ClearDate: true, Order: &idx},
		}}, nil

	case domain.ContainerDay:
		day := domain.StartOfDay(ev.Target.Day, loc)
		if domain.SameCalendarDay(ev.Task.Date, &day, loc) {
			return nil, nil
		}
		if indexOf(ev.TargetItems, ev.Task.ID) < 0 {
			return nil, fmt.Errorf("schedule.Resolve: dragged task %s not in target items: %w", ev.Task.ID, domain.ErrValidation)
		}
		muts := make([]Mutation, 0, len(ev.TargetItems)+len(ev.SourceItems))
		for i, id := range ev.TargetItems {
			i := i
			d := day
			muts = append(muts, Mutation{
				TaskID: id,
				Patch:  domain.TaskPatch{Date: &d, Order: &i},
			})
		}
		return append(muts, sourceReorder(ev)...), nil

	case domain.ContainerLane:
		status, ok := ev.Target.Lane.Status()
		if !ok {
			return nil, fmt.Errorf("schedule.Resolve: unknown lane %q: %w", ev.Target.Lane, domain.ErrValidation)
		}
		if indexOf(ev.TargetItems, ev.Task.ID) < 0 {
			return nil, fmt.Errorf("schedule.Resolve: dragged task %s not in target items: %w", ev.Task.ID, domain.ErrValidation)
		}
		muts := make([]Mutation, 0, len(ev.TargetItems)+len(ev.SourceItems))
		for i, id := range ev.TargetItems {
			i := i
			s := status
			// completed_at is derived by the mutator from the status
			// transition, never supplied here.
			muts = append(muts, Mutation{
				TaskID: id,
				Patch:  domain.TaskPatch{Status: &s, Order: &i},
			})
		}
		if ev.Source.Kind == domain.ContainerLane && ev.Source.Lane == ev.Target.Lane {
			return muts, nil
		}
		return append(muts, sourceReorder(ev)...), nil

	default:
		return nil, fmt.Errorf("schedule.Resolve: unknown target container: %w", domain.ErrValidation)
	}
}

// sourceReorder re-sequences what remains of a day or lane source after
// the dragged task left it. Backlog sources keep their sparse order.
func sourceReorder(ev DropEvent) []Mutation {
	if ev.Source.Kind == domain.ContainerBacklog {
		return nil
	}
	muts := make([]Mutation, 0, len(ev.SourceItems))
	next := 0
	for _, id := range ev.SourceItems {
		if id == ev.Task.ID {
			continue
		}
		idx := next
		next++
		muts = append(muts, Mutation{
			TaskID: id,
			Patch:  domain.TaskPatch{Order: &idx},
		})
	}
	return muts
}

func indexOf(ids []uuid.UUID, id uuid.UUID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
