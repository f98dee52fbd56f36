// Package jira pushes task-completion state through Jira workflow
// transitions.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/tracker"
)

// Provider moves Jira issues between workflow states. Jira workflows are
// per-project and user-defined, so the valid moves have to be read from
// the issue's transition endpoint each time. A task's Host carries the
// site base URL and its ExternalID the issue key.
type Provider struct {
	client *http.Client
}

// New creates a Provider authenticated with the given token.
func New(token string) *Provider {
	return &Provider{client: tracker.OAuthClient(context.Background(), token)}
}

// NewWithClient creates a Provider with a caller-supplied HTTP client.
func NewWithClient(client *http.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderJira }

// RemoteStatus names the transition a blind push would look for. The
// actual id still has to be resolved against the live transition list.
func (p *Provider) RemoteStatus(local domain.TaskStatus, _ *domain.Task) (string, error) {
	if local == domain.TaskStatusCompleted {
		return "Done", nil
	}
	return "To Do", nil
}

// PushStatus resolves the named transition against the issue's current
// workflow position and executes it.
func (p *Provider) PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error {
	transitions, err := p.ListTransitions(ctx, t)
	if err != nil {
		return err
	}
	for _, tr := range transitions {
		if strings.EqualFold(tr.Name, remoteStatus) {
			return p.PushTransition(ctx, t, tr.ID)
		}
	}
	return fmt.Errorf("jira.Provider.PushStatus: no transition named %q for issue %s: %w", remoteStatus, deref(t.ExternalID), tracker.ErrNoRemoteStatus)
}

type transitionsResponse struct {
	Transitions []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"transitions"`
}

// ListTransitions reads the moves available from the issue's current
// workflow state.
func (p *Provider) ListTransitions(ctx context.Context, t *domain.Task) ([]tracker.Transition, error) {
	url, err := p.issueURL(t)
	if err != nil {
		return nil, fmt.Errorf("jira.Provider.ListTransitions: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/transitions", nil)
	if err != nil {
		return nil, fmt.Errorf("jira.Provider.ListTransitions: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira.Provider.ListTransitions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira.Provider.ListTransitions: issue %s: unexpected status %d", deref(t.ExternalID), resp.StatusCode)
	}

	var decoded transitionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("jira.Provider.ListTransitions: decode: %w", err)
	}

	out := make([]tracker.Transition, 0, len(decoded.Transitions))
	for _, tr := range decoded.Transitions {
		out = append(out, tracker.Transition{ID: tr.ID, Name: tr.Name})
	}
	return out, nil
}

// PushTransition executes one transition by id.
func (p *Provider) PushTransition(ctx context.Context, t *domain.Task, transitionID string) error {
	url, err := p.issueURL(t)
	if err != nil {
		return fmt.Errorf("jira.Provider.PushTransition: %w", err)
	}

	body, err := json.Marshal(map[string]map[string]string{
		"transition": {"id": transitionID},
	})
	if err != nil {
		return fmt.Errorf("jira.Provider.PushTransition: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transitions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("jira.Provider.PushTransition: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("jira.Provider.PushTransition: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("jira.Provider.PushTransition: issue %s: unexpected status %d", deref(t.ExternalID), resp.StatusCode)
	}
	return nil
}

func (p *Provider) issueURL(t *domain.Task) (string, error) {
	if t.Host == nil || t.ExternalID == nil {
		return "", fmt.Errorf("task %s has no issue reference: %w", t.ID, domain.ErrValidation)
	}
	return fmt.Sprintf("%s/rest/api/3/issue/%s", strings.TrimSuffix(*t.Host, "/"), *t.ExternalID), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
