package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/domain"
)

// Engine owns the per-container ordered item lists behind one interactive
// view and wires drop gestures to the resolver and the bulk mutator.
//
// Drops mutate the in-memory lists optimistically before the persistence
// call settles. A container with its own mutation outstanding is locked
// against engine-initiated refreshes; further drops into it are permitted
// but their bulk mutations queue behind the first. On a persistence error
// the touched containers are restored to their pre-drop snapshots and the
// error is surfaced through the error handler.
type Engine struct {
	workspaceID uuid.UUID
	loc         *time.Location
	mutator     Mutator
	onError     func(containers []string, err error)

	mu      sync.Mutex
	idle    *sync.Cond
	lists   map[string][]uuid.UUID
	pending map[string]int // outstanding mutations per container
	queue   []engineOp
	busy    bool
}

type engineOp struct {
	ctx        context.Context
	muts       []Mutation
	containers []string
	snapshots  map[string][]uuid.UUID // pre-drop lists
}

// EngineOption configures optional Engine parameters.
type EngineOption func(*Engine)

// WithErrorHandler installs the callback invoked when a queued bulk
// mutation fails, after the affected containers have been reverted.
func WithErrorHandler(fn func(containers []string, err error)) EngineOption {
	return func(e *Engine) {
		e.onError = fn
	}
}

// NewEngine creates an Engine for one workspace view. loc is the viewer's
// time zone used to normalize date containers.
func NewEngine(workspaceID uuid.UUID, loc *time.Location, mutator Mutator, opts ...EngineOption) *Engine {
	if loc == nil {
		loc = time.Local
	}
	e := &Engine{
		workspaceID: workspaceID,
		loc:         loc,
		mutator:     mutator,
		lists:       make(map[string][]uuid.UUID),
		pending:     make(map[string]int),
		onError: func(containers []string, err error) {
			log.Error().Err(err).Strs("containers", containers).Msg("drop mutation failed, containers reverted")
		},
	}
	e.idle = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces all container lists, typically from a fresh store query.
func (e *Engine) Load(lists map[string][]uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lists = make(map[string][]uuid.UUID, len(lists))
	for k, ids := range lists {
		e.lists[k] = append([]uuid.UUID(nil), ids...)
	}
}

// Container returns a copy of one container's ordered ids.
func (e *Engine) Container(key string) []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]uuid.UUID(nil), e.lists[key]...)
}

// Refresh replaces one container's list from a refetch. It reports false
// and leaves the list alone while the container has its own mutation
// outstanding, so a stale fetch cannot clobber optimistic state.
func (e *Engine) Refresh(key string, ids []uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending[key] > 0 {
		return false
	}
	e.lists[key] = append([]uuid.UUID(nil), ids...)
	return true
}

// Drop handles one drag-end gesture. It applies the optimistic list update
// synchronously and enqueues the bulk mutation; the call never blocks on
// persistence. A resolver no-op (same-day drop) returns nil with no state
// change and no mutator call.
func (e *Engine) Drop(ctx context.Context, ev DropEvent) error {
	if ev.Location == nil {
		ev.Location = e.loc
	}

	sourceKey := ev.Source.String()
	targetKey := ev.Target.String()

	e.mu.Lock()
	defer e.mu.Unlock()

	// The engine owns the source list, so it fills in what the resolver
	// needs to keep the source order dense after the task leaves.
	if sourceKey != targetKey && ev.SourceItems == nil {
		src := append([]uuid.UUID(nil), e.lists[sourceKey]...)
		ev.SourceItems = removeID(src, ev.Task.ID)
	}

	muts, err := Resolve(ev)
	if err != nil {
		return err
	}
	if len(muts) == 0 {
		return nil
	}

	containers := []string{targetKey}
	if sourceKey != targetKey {
		containers = append(containers, sourceKey)
	}

	snapshots := make(map[string][]uuid.UUID, len(containers))
	for _, key := range containers {
		snapshots[key] = append([]uuid.UUID(nil), e.lists[key]...)
	}

	// Optimistic update: the dragged task leaves its source container and
	// the target takes the post-drop ordering reported by the gesture.
	if sourceKey != targetKey {
		e.lists[sourceKey] = append([]uuid.UUID(nil), ev.SourceItems...)
	}
	e.lists[targetKey] = append([]uuid.UUID(nil), ev.TargetItems...)

	for _, key := range containers {
		e.pending[key]++
	}
	e.queue = append(e.queue, engineOp{
		ctx:        ctx,
		muts:       muts,
		containers: containers,
		snapshots:  snapshots,
	})

	if !e.busy {
		e.busy = true
		go e.drain()
	}
	return nil
}

// WaitIdle blocks until every queued mutation has settled.
func (e *Engine) WaitIdle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.busy || len(e.queue) > 0 {
		e.idle.Wait()
	}
}

func (e *Engine) drain() {
	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.busy = false
			e.idle.Broadcast()
			e.mu.Unlock()
			return
		}
		op := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		err := e.mutator.Apply(op.ctx, e.workspaceID, op.muts)

		e.mu.Lock()
		for _, key := range op.containers {
			if e.pending[key]--; e.pending[key] <= 0 {
				delete(e.pending, key)
			}
		}
		if err != nil {
			for key, snap := range op.snapshots {
				e.lists[key] = snap
			}
		}
		e.mu.Unlock()

		if err != nil {
			e.onError(op.containers, err)
		}
	}
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// ContainerKeyFor returns the date-view container key holding t.
func ContainerKeyFor(t *domain.Task, loc *time.Location) string {
	if t.Date == nil {
		return domain.BacklogToken
	}
	return domain.DayContainer(*t.Date, loc).String()
}
