package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/domain"
)

// PlanState tracks the auto-planner state machine.
type PlanState string

const (
	PlanStateIdle              PlanState = "idle"
	PlanStateComputingCapacity PlanState = "computing-capacity"
	PlanStateRequestingPlan    PlanState = "requesting-plan"
	PlanStateApplying          PlanState = "applying"
	PlanStateDone              PlanState = "done"
	PlanStateRolledBack        PlanState = "rolled-back"
	PlanStateFailed            PlanState = "failed"
)

// DefaultDayCapacity is the scheduled-task count at which a weekday stops
// being offered as a planning target.
const DefaultDayCapacity = 2

var (
	// ErrNoAvailableDays means every weekday in the window is at capacity.
	ErrNoAvailableDays = errors.New("schedule: no days with spare capacity in window")
	// ErrEmptyPlan means the planning service returned no usable assignments.
	ErrEmptyPlan = errors.New("schedule: planning service returned an empty assignment set")
	// ErrPlanExpired means rollback was requested without a retained plan.
	ErrPlanExpired = errors.New("schedule: no retained plan to roll back")
)

// AvailableDate is one day offered to the planning service.
type AvailableDate struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`
}

// PlanRequest is the planning-service request contract. The decision logic
// behind it is external; the planner only pre-filters capacity.
type PlanRequest struct {
	WorkspaceID    uuid.UUID       `json:"workspace_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	AvailableDates []AvailableDate `json:"available_dates"`
}

// Assignment is one task's planned date as returned by the service.
type Assignment struct {
	TaskID uuid.UUID `json:"id"`
	Date   time.Time `json:"date"`
}

// PlanResponse is retained in memory for the undo window; it is never
// persisted, so rollback is unavailable after a restart.
type PlanResponse struct {
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	Assignments []Assignment `json:"assignments"`
	PlannedAt   time.Time    `json:"planned_at"`
}

// PlanService is the external scheduling decision service.
type PlanService interface {
	Plan(ctx context.Context, req PlanRequest) ([]Assignment, error)
}

// Planner redistributes unscheduled backlog tasks across the coming weeks
// without overloading any single day.
type Planner struct {
	tasks    domain.TaskRepository
	svc      PlanService
	mutator  Mutator
	capacity int
	loc      *time.Location
	now      func() time.Time

	mu        sync.Mutex
	states    map[uuid.UUID]PlanState
	lastPlans map[uuid.UUID]*PlanResponse
}

// NewPlanner creates a Planner. capacity <= 0 falls back to
// DefaultDayCapacity.
func NewPlanner(tasks domain.TaskRepository, svc PlanService, mutator Mutator, capacity int, loc *time.Location) *Planner {
	if capacity <= 0 {
		capacity = DefaultDayCapacity
	}
	if loc == nil {
		loc = time.Local
	}
	return &Planner{
		tasks:     tasks,
		svc:       svc,
		mutator:   mutator,
		capacity:  capacity,
		loc:       loc,
		now:       time.Now,
		states:    make(map[uuid.UUID]PlanState),
		lastPlans: make(map[uuid.UUID]*PlanResponse),
	}
}

// SetNow overrides the planner's clock. Tests use this to pin the window.
func (p *Planner) SetNow(now func() time.Time) {
	p.now = now
}

// State returns the workspace's current planner state.
func (p *Planner) State(workspaceID uuid.UUID) PlanState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.states[workspaceID]; ok {
		return s
	}
	return PlanStateIdle
}

// LastPlan returns the retained plan for the workspace, if any.
func (p *Planner) LastPlan(workspaceID uuid.UUID) (*PlanResponse, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	plan, ok := p.lastPlans[workspaceID]
	return plan, ok
}

// Run executes one planning pass: compute per-day capacity over the window
// from today through the end of the second following week, request date
// assignments for every unscheduled backlog task, and apply them as a bulk
// mutation. The response is retained so Rollback can reverse it.
//
// Any error before the applying step leaves every backlog task untouched
// and the run safely retryable.
func (p *Planner) Run(ctx context.Context, workspaceID uuid.UUID) (*PlanResponse, error) {
	p.setState(workspaceID, PlanStateComputingCapacity)

	start, end := p.window()

	backlog, err := p.tasks.List(ctx, workspaceID, domain.TaskFilter{
		Unscheduled: true,
		Statuses:    []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress},
	})
	if err != nil {
		p.setState(workspaceID, PlanStateFailed)
		return nil, fmt.Errorf("schedule.Planner.Run: list backlog: %w", err)
	}
	if len(backlog) == 0 {
		p.setState(workspaceID, PlanStateDone)
		return &PlanResponse{WorkspaceID: workspaceID, PlannedAt: p.now()}, nil
	}

	available, err := p.availableDays(ctx, workspaceID, start, end)
	if err != nil {
		p.setState(workspaceID, PlanStateFailed)
		return nil, err
	}

	p.setState(workspaceID, PlanStateRequestingPlan)

	assignments, err := p.svc.Plan(ctx, PlanRequest{
		WorkspaceID:    workspaceID,
		StartDate:      start,
		EndDate:        end,
		AvailableDates: available,
	})
	if err != nil {
		p.setState(workspaceID, PlanStateFailed)
		return nil, fmt.Errorf("schedule.Planner.Run: planning service: %w", err)
	}
	if err := validateAssignments(assignments, backlog); err != nil {
		p.setState(workspaceID, PlanStateFailed)
		return nil, err
	}

	p.setState(workspaceID, PlanStateApplying)

	muts := make([]Mutation, 0, len(assignments))
	for _, a := range assignments {
		d := domain.StartOfDay(a.Date, p.loc)
		muts = append(muts, Mutation{TaskID: a.TaskID, Patch: domain.TaskPatch{Date: &d}})
	}
	if err := p.mutator.Apply(ctx, workspaceID, muts); err != nil {
		p.setState(workspaceID, PlanStateFailed)
		return nil, fmt.Errorf("schedule.Planner.Run: apply: %w", err)
	}

	plan := &PlanResponse{
		WorkspaceID: workspaceID,
		Assignments: assignments,
		PlannedAt:   p.now(),
	}

	p.mu.Lock()
	p.states[workspaceID] = PlanStateDone
	p.lastPlans[workspaceID] = plan
	p.mu.Unlock()

	log.Info().
		Str("workspace_id", workspaceID.String()).
		Int("assigned", len(assignments)).
		Msg("auto-plan applied")

	return plan, nil
}

// Rollback reverses a retained plan by setting date = null for exactly the
// assigned task ids. Only the date is ever touched, regardless of what else
// changed since the run.
func (p *Planner) Rollback(ctx context.Context, plan *PlanResponse) error {
	if plan == nil || len(plan.Assignments) == 0 {
		return ErrPlanExpired
	}

	muts := make([]Mutation, 0, len(plan.Assignments))
	for _, a := range plan.Assignments {
		muts = append(muts, Mutation{TaskID: a.TaskID, Patch: domain.TaskPatch{ClearDate: true}})
	}
	if err := p.mutator.Apply(ctx, plan.WorkspaceID, muts); err != nil {
		return fmt.Errorf("schedule.Planner.Rollback: %w", err)
	}

	p.mu.Lock()
	p.states[plan.WorkspaceID] = PlanStateRolledBack
	if retained, ok := p.lastPlans[plan.WorkspaceID]; ok && retained.PlannedAt.Equal(plan.PlannedAt) {
		delete(p.lastPlans, plan.WorkspaceID)
	}
	p.mu.Unlock()

	return nil
}

// window spans from the start of today through the Sunday that closes the
// second following week.
func (p *Planner) window() (start, end time.Time) {
	start = domain.StartOfDay(p.now(), p.loc)

	// Walk back to Monday of the current week, then forward to the Sunday
	// two weeks out.
	offset := (int(start.Weekday()) + 6) % 7 // Monday = 0
	monday := start.AddDate(0, 0, -offset)
	end = monday.AddDate(0, 0, 20)
	return start, end
}

// availableDays lists weekdays in [start, end] whose scheduled-task count
// is below capacity. Weekends are never offered.
func (p *Planner) availableDays(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]AvailableDate, error) {
	counts, err := p.tasks.CountScheduledPerDay(ctx, workspaceID, start, end)
	if err != nil {
		return nil, fmt.Errorf("schedule.Planner: count per day: %w", err)
	}

	// Accumulate rather than assign: rows are keyed by calendar day at the
	// store, but a task written with a stray time-of-day must still count
	// against its day.
	byDay := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		byDay[domain.StartOfDay(c.Day, p.loc)] += c.Count
	}

	var available []AvailableDate
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		if byDay[day] >= p.capacity {
			continue
		}
		available = append(available, AvailableDate{Date: day, Weekday: day.Weekday().String()})
	}
	if len(available) == 0 {
		return nil, ErrNoAvailableDays
	}
	return available, nil
}

func validateAssignments(assignments []Assignment, backlog []*domain.Task) error {
	if len(assignments) == 0 {
		return ErrEmptyPlan
	}
	known := make(map[uuid.UUID]struct{}, len(backlog))
	for _, t := range backlog {
		known[t.ID] = struct{}{}
	}
	for _, a := range assignments {
		if _, ok := known[a.TaskID]; !ok {
			return fmt.Errorf("schedule: assignment for unknown task %s: %w", a.TaskID, ErrEmptyPlan)
		}
	}
	return nil
}

func (p *Planner) setState(workspaceID uuid.UUID, s PlanState) {
	p.mu.Lock()
	p.states[workspaceID] = s
	p.mu.Unlock()
	log.Debug().Str("workspace_id", workspaceID.String()).Str("state", string(s)).Msg("planner state")
}
