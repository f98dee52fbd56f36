// Package notify delivers transient, non-blocking notifications about
// background failures. Delivery problems are logged and dropped; nothing
// in the request path ever waits on a notification.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/planar-app/planar/internal/domain"
)

// Sink is one delivery channel for notification text.
type Sink interface {
	Send(ctx context.Context, text string) error
	Platform() string
}

// Notifier fans a notification out to every configured sink.
type Notifier struct {
	sinks []Sink
}

// New creates a Notifier over the given sinks. Zero sinks is valid; the
// notifier then only logs.
func New(sinks ...Sink) *Notifier {
	return &Notifier{sinks: sinks}
}

// NotifySyncFailure reports that a task's remote status push failed and
// the local status was kept.
func (n *Notifier) NotifySyncFailure(ctx context.Context, t *domain.Task, err error) {
	source := "unknown"
	if t.IntegrationSource != nil {
		source = string(*t.IntegrationSource)
	}
	text := fmt.Sprintf("Couldn't sync %q to %s. The task is updated here; the %s side is out of date. (%v)",
		t.Name, source, source, err)

	log.Warn().
		Err(err).
		Str("task_id", t.ID.String()).
		Str("provider", source).
		Msg("remote sync failed")

	for _, s := range n.sinks {
		if sendErr := s.Send(ctx, text); sendErr != nil {
			log.Warn().
				Err(sendErr).
				Str("platform", s.Platform()).
				Msg("notification delivery failed")
		}
	}
}
