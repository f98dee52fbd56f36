package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
)

// OutcomeKind describes where a completion toggle landed.
type OutcomeKind string

const (
	// OutcomeApplied: local status written; remote either untouched by
	// policy, already pushed, or left unsynced after a user cancel.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeSyncFailed: local status written and kept; the remote push
	// failed and was reported.
	OutcomeSyncFailed OutcomeKind = "sync_failed"
	// OutcomeAwaitingTransition: local status written; the user must pick
	// the remote workflow transition to apply.
	OutcomeAwaitingTransition OutcomeKind = "awaiting_transition"
	// OutcomeAwaitingConfirmation: nothing written yet; the user must
	// confirm or decline the sync intent first.
	OutcomeAwaitingConfirmation OutcomeKind = "awaiting_confirmation"
)

// Outcome is the result of a completion toggle or a sync decision.
type Outcome struct {
	Kind        OutcomeKind  `json:"kind"`
	Transitions []Transition `json:"transitions,omitempty"`
	SyncError   string       `json:"sync_error,omitempty"`
}

// DecisionKind is a user's answer to a pending prompt.
type DecisionKind string

const (
	DecisionConfirm    DecisionKind = "confirm"    // apply local and push
	DecisionDecline    DecisionKind = "decline"    // apply local only
	DecisionTransition DecisionKind = "transition" // push the chosen transition
	DecisionCancel     DecisionKind = "cancel"     // leave remote unsynced
)

// Decision carries a DecisionKind plus the transition choice when relevant.
type Decision struct {
	Kind         DecisionKind `json:"kind"`
	TransitionID string       `json:"transition_id,omitempty"`
}

// ErrNoPendingSync is returned for a decision with no outstanding prompt.
var ErrNoPendingSync = fmt.Errorf("tracker: no pending sync decision: %w", domain.ErrNotFound)

// Notifier reports remote-sync failures to the user. Failures never roll
// back local state, so the notification is the only signal.
type Notifier interface {
	NotifySyncFailure(ctx context.Context, t *domain.Task, err error)
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) NotifySyncFailure(context.Context, *domain.Task, error) {}

type pendKey struct {
	workspaceID uuid.UUID
	taskID      uuid.UUID
}

type pendingSync struct {
	target       domain.TaskStatus
	localApplied bool
}

// Syncer runs the per-toggle state machine branching on the task's
// integration source and that integration's configured sync policy.
//
// Local task tracking must not depend on third-party availability: once
// the local status is written, no remote failure reverts it.
type Syncer struct {
	tasks        domain.TaskRepository
	integrations domain.IntegrationRepository
	providers    *Registry
	mutator      schedule.Mutator
	notifier     Notifier

	mu      sync.Mutex
	pending map[pendKey]pendingSync
}

// NewSyncer creates a Syncer. notifier may be nil.
func NewSyncer(tasks domain.TaskRepository, integrations domain.IntegrationRepository, providers *Registry, mutator schedule.Mutator, notifier Notifier) *Syncer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Syncer{
		tasks:        tasks,
		integrations: integrations,
		providers:    providers,
		mutator:      mutator,
		notifier:     notifier,
		pending:      make(map[pendKey]pendingSync),
	}
}

// Toggle handles one completion-checkbox event. completed=true targets the
// completed status, completed=false returns the task to pending.
func (s *Syncer) Toggle(ctx context.Context, workspaceID, taskID uuid.UUID, completed bool) (*Outcome, error) {
	t, err := s.tasks.GetByID(ctx, workspaceID, taskID)
	if err != nil {
		return nil, fmt.Errorf("tracker.Syncer.Toggle: %w", err)
	}

	target := domain.TaskStatusPending
	if completed {
		target = domain.TaskStatusCompleted
	}

	policy := s.policyFor(ctx, t)
	if policy == domain.SyncNever {
		if err := s.applyLocal(ctx, workspaceID, taskID, target); err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeApplied}, nil
	}

	provider, ok := s.providers.Get(*t.IntegrationSource)
	if !ok {
		// Policy wants a push but no adapter is wired; the local toggle
		// still has to land.
		if err := s.applyLocal(ctx, workspaceID, taskID, target); err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeSyncFailed, SyncError: ErrProviderNotFound.Error()}, nil
	}

	if policy == domain.SyncAuto {
		if err := s.applyLocal(ctx, workspaceID, taskID, target); err != nil {
			return nil, err
		}
		return s.push(ctx, provider, t, target), nil
	}

	// policy == prompt
	if lister, hasTransitions := provider.(TransitionLister); hasTransitions {
		// Fixed-lookup providers: local applies immediately, the user then
		// picks the exact remote transition in a modal.
		if err := s.applyLocal(ctx, workspaceID, taskID, target); err != nil {
			return nil, err
		}
		transitions, listErr := lister.ListTransitions(ctx, t)
		if listErr != nil {
			s.notifier.NotifySyncFailure(ctx, t, listErr)
			return &Outcome{Kind: OutcomeSyncFailed, SyncError: listErr.Error()}, nil
		}
		s.setPending(workspaceID, taskID, pendingSync{target: target, localApplied: true})
		return &Outcome{Kind: OutcomeAwaitingTransition, Transitions: transitions}, nil
	}

	// Providers without a transition lookup: neither side mutates until
	// the user confirms the intent to sync.
	s.setPending(workspaceID, taskID, pendingSync{target: target})
	return &Outcome{Kind: OutcomeAwaitingConfirmation}, nil
}

// Decide resolves a pending prompt for the task.
func (s *Syncer) Decide(ctx context.Context, workspaceID, taskID uuid.UUID, decision Decision) (*Outcome, error) {
	pend, ok := s.takePending(workspaceID, taskID)
	if !ok {
		return nil, ErrNoPendingSync
	}

	t, err := s.tasks.GetByID(ctx, workspaceID, taskID)
	if err != nil {
		return nil, fmt.Errorf("tracker.Syncer.Decide: %w", err)
	}

	switch decision.Kind {
	case DecisionConfirm:
		if err := s.applyLocal(ctx, workspaceID, taskID, pend.target); err != nil {
			return nil, err
		}
		provider, ok := s.providers.Get(*t.IntegrationSource)
		if !ok {
			return &Outcome{Kind: OutcomeSyncFailed, SyncError: ErrProviderNotFound.Error()}, nil
		}
		return s.push(ctx, provider, t, pend.target), nil

	case DecisionDecline:
		if err := s.applyLocal(ctx, workspaceID, taskID, pend.target); err != nil {
			return nil, err
		}
		return &Outcome{Kind: OutcomeApplied}, nil

	case DecisionTransition:
		provider, ok := s.providers.Get(*t.IntegrationSource)
		if !ok {
			return &Outcome{Kind: OutcomeSyncFailed, SyncError: ErrProviderNotFound.Error()}, nil
		}
		lister, ok := provider.(TransitionLister)
		if !ok {
			return nil, fmt.Errorf("tracker.Syncer.Decide: provider %s has no transitions: %w", provider.Type(), domain.ErrValidation)
		}
		if pushErr := lister.PushTransition(ctx, t, decision.TransitionID); pushErr != nil {
			s.notifier.NotifySyncFailure(ctx, t, pushErr)
			return &Outcome{Kind: OutcomeSyncFailed, SyncError: pushErr.Error()}, nil
		}
		return &Outcome{Kind: OutcomeApplied}, nil

	case DecisionCancel:
		// Local status stands (it was applied for transition prompts and
		// never touched for confirmation prompts); remote stays unsynced
		// with no reconciliation attempt.
		return &Outcome{Kind: OutcomeApplied}, nil

	default:
		// Put the prompt back; the decision was malformed.
		s.setPending(workspaceID, taskID, pend)
		return nil, fmt.Errorf("tracker.Syncer.Decide: unknown decision %q: %w", decision.Kind, domain.ErrValidation)
	}
}

// policyFor resolves the effective sync policy for the task's source.
// Tasks without a source, and sources without an active integration
// record, behave as "never".
func (s *Syncer) policyFor(ctx context.Context, t *domain.Task) domain.SyncPolicy {
	if t.IntegrationSource == nil {
		return domain.SyncNever
	}
	integ, err := s.integrations.GetByType(ctx, t.WorkspaceID, *t.IntegrationSource)
	if err != nil {
		return domain.SyncNever
	}
	if integ.Status != domain.IntegrationActive {
		return domain.SyncNever
	}
	return integ.SyncStatus.Normalize()
}

// applyLocal writes the status toggle through the bulk mutator, which
// derives completed_at from the transition.
func (s *Syncer) applyLocal(ctx context.Context, workspaceID, taskID uuid.UUID, target domain.TaskStatus) error {
	st := target
	err := s.mutator.Apply(ctx, workspaceID, []schedule.Mutation{
		{TaskID: taskID, Patch: domain.TaskPatch{Status: &st}},
	})
	if err != nil {
		return fmt.Errorf("tracker.Syncer: local status write: %w", err)
	}
	return nil
}

// push maps and writes the remote status. Failures are reported and the
// already-committed local status is left standing.
func (s *Syncer) push(ctx context.Context, provider Provider, t *domain.Task, target domain.TaskStatus) *Outcome {
	remote, err := provider.RemoteStatus(target, t)
	if err == nil {
		err = provider.PushStatus(ctx, t, remote)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("task_id", t.ID.String()).
			Str("provider", string(provider.Type())).
			Msg("remote status push failed, local status kept")
		s.notifier.NotifySyncFailure(ctx, t, err)
		return &Outcome{Kind: OutcomeSyncFailed, SyncError: err.Error()}
	}
	return &Outcome{Kind: OutcomeApplied}
}

func (s *Syncer) setPending(workspaceID, taskID uuid.UUID, p pendingSync) {
	s.mu.Lock()
	s.pending[pendKey{workspaceID, taskID}] = p
	s.mu.Unlock()
}

func (s *Syncer) takePending(workspaceID, taskID uuid.UUID) (pendingSync, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[pendKey{workspaceID, taskID}]
	if ok {
		delete(s.pending, pendKey{workspaceID, taskID})
	}
	return p, ok
}
