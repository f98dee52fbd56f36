// Package github pushes task-completion state to GitHub issues.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/tracker"
)

const defaultBaseURL = "https://api.github.com"

// Provider maps local statuses onto GitHub issue state. A task's Host
// carries the "owner/repo" slug and its ExternalID the issue number.
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

// NewWithClient creates a Provider against a custom API endpoint. Tests
// and GitHub Enterprise installs use this.
func NewWithClient(client *http.Client, baseURL string) *Provider {
	return &Provider{client: client, baseURL: baseURL}
}

func (p *Provider) Type() domain.ProviderType { return domain.ProviderGitHub }

// RemoteStatus maps onto GitHub's two issue states.
func (p *Provider) RemoteStatus(local domain.TaskStatus, _ *domain.Task) (string, error) {
	if local == domain.TaskStatusCompleted {
		return "closed", nil
	}
	return "open", nil
}

// PushStatus patches the issue state.
func (p *Provider) PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error {
	if t.Host == nil || t.ExternalID == nil {
		return fmt.Errorf("github.Provider.PushStatus: task %s has no issue reference: %w", t.ID, domain.ErrValidation)
	}

	body, err := json.Marshal(map[string]string{"state": remoteStatus})
	if err != nil {
		return fmt.Errorf("github.Provider.PushStatus: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues/%s", p.baseURL, *t.Host, *t.ExternalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("github.Provider.PushStatus: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("github.Provider.PushStatus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github.Provider.PushStatus: issue %s/%s: unexpected status %d", *t.Host, *t.ExternalID, resp.StatusCode)
	}
	return nil
}
