// Package tracker reconciles local task-completion toggles against the
// external tracker each task was imported from. Providers form a small
// closed set of adapters dispatched by the task's integration source.
package tracker

import (
	"context"
	"errors"

	"github.com/planar-app/planar/internal/domain"
)

// ErrProviderNotFound is returned when a task references an integration
// source with no registered adapter.
var ErrProviderNotFound = errors.New("tracker: provider not registered")

// ErrNoRemoteStatus is returned when a provider cannot map the local
// status into its remote vocabulary.
var ErrNoRemoteStatus = errors.New("tracker: no matching remote status")

// Provider adapts one external tracker's status vocabulary and API.
type Provider interface {
	// Type returns the provider identifier the adapter serves.
	Type() domain.ProviderType

	// RemoteStatus maps a local status to this provider's vocabulary,
	// consulting the task's cached remote snapshot where the vocabulary
	// is user-defined.
	RemoteStatus(local domain.TaskStatus, t *domain.Task) (string, error)

	// PushStatus writes the mapped status to the remote tracker.
	PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error
}

// Transition is one remote workflow transition a user can pick from.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransitionLister is the capability of providers with user-defined
// workflow states resolved through a dedicated lookup. The sync engine
// uses it to offer a transition picker instead of a blind push.
type TransitionLister interface {
	ListTransitions(ctx context.Context, t *domain.Task) ([]Transition, error)
	PushTransition(ctx context.Context, t *domain.Task, transitionID string) error
}

// Registry maps provider types to adapters.
type Registry struct {
	providers map[domain.ProviderType]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[domain.ProviderType]Provider)}
}

// Register adds an adapter for its provider type.
func (r *Registry) Register(p Provider) {
	r.providers[p.Type()] = p
}

// Get returns the adapter for the given provider type, or false.
func (r *Registry) Get(typ domain.ProviderType) (Provider, bool) {
	p, ok := r.providers[typ]
	return p, ok
}
