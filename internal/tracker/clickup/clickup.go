// Package clickup pushes task-completion state to ClickUp.
package clickup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/tracker"
)

const defaultBaseURL = "https://api.clickup.com/api/v2"

// Provider writes statuses from each list's user-defined vocabulary. The
// available statuses were cached on the task at import time, so mapping
// needs no extra API round trip.
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

func (p *Provider) Type() domain.ProviderType { return domain.ProviderClickUp }

type cachedStatus struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

type cachedData struct {
	Statuses []cachedStatus `json:"statuses"`
}

// RemoteStatus picks the matching status label from the task's cached
// remote snapshot. Completed maps to the list's closed-type status,
// everything else to its open-type status.
func (p *Provider) RemoteStatus(local domain.TaskStatus, t *domain.Task) (string, error) {
	if len(t.ExternalData) == 0 {
		return "", fmt.Errorf("clickup.Provider: task %s has no cached status set: %w", t.ID, tracker.ErrNoRemoteStatus)
	}

	var data cachedData
	if err := json.Unmarshal(t.ExternalData, &data); err != nil {
		return "", fmt.Errorf("clickup.Provider: decode cached data: %w", err)
	}

	wantType := "open"
	if local == domain.TaskStatusCompleted {
		wantType = "closed"
	}
	for _, s := range data.Statuses {
		if s.Type == wantType || (wantType == "closed" && s.Type == "done") {
			return s.Status, nil
		}
	}
	return "", fmt.Errorf("clickup.Provider: no %s-type status in cached set: %w", wantType, tracker.ErrNoRemoteStatus)
}

// PushStatus updates the remote task's status label.
func (p *Provider) PushStatus(ctx context.Context, t *domain.Task, remoteStatus string) error {
	if t.ExternalID == nil {
		return fmt.Errorf("clickup.Provider.PushStatus: task %s has no remote id: %w", t.ID, domain.ErrValidation)
	}

	body, err := json.Marshal(map[string]string{"status": remoteStatus})
	if err != nil {
		return fmt.Errorf("clickup.Provider.PushStatus: %w", err)
	}

	url := fmt.Sprintf("%s/task/%s", p.baseURL, *t.ExternalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("clickup.Provider.PushStatus: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("clickup.Provider.PushStatus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clickup.Provider.PushStatus: task %s: unexpected status %d", *t.ExternalID, resp.StatusCode)
	}
	return nil
}
