// Package todoist pushes task-completion state to Todoist.
package todoist

import (
	"context"
	"fmt"
	"net/http"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/tracker"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Provider closes and reopens Todoist tasks. Todoist has no richer
// status model, so the remote "status" is the action verb itself.
type Provider struct {
	client  *http.Client
	baseURL string
}

// New creates a Provider authenticated with the given token.
func New(token string) *Provider {
	return &Provider{
		client:  tracker.OAuthClient(context.Background(), token),
		baseURL: defaultBaseURL,
	}
}

// NewWithClient creates a Provider against a custom API endpoint.
func NewWithClient(client *http.Client, baseURL string) *Provider {
	return &Provider{client: client, baseURL: baseURL}
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderTodoist }

func (p *Provider) RemoteStatus(local domain.TaskStatus, _ *domain.Task) (string, error) {
	if local == domain.TaskStatusCompleted {
		return "close", nil
	}
	return "reopen", nil
}

// PushStatus issues the close or reopen command for the remote task.
func (p *Provider) PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error {
	if t.ExternalID == nil {
		return fmt.Errorf("todoist.Provider.PushStatus: task %s has no remote id: %w", t.ID, domain.ErrValidation)
	}
	if remoteStatus != "close" && remoteStatus != "reopen" {
		return fmt.Errorf("todoist.Provider.PushStatus: unknown action %q: %w", remoteStatus, tracker.ErrNoRemoteStatus)
	}

	url := fmt.Sprintf("%s/tasks/%s/%s", p.baseURL, *t.ExternalID, remoteStatus)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("todoist.Provider.PushStatus: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("todoist.Provider.PushStatus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("todoist.Provider.PushStatus: task %s: unexpected status %d", *t.ExternalID, resp.StatusCode)
	}
	return nil
}
