// Package plansvc is the HTTP client for the external planning service
// that decides which backlog task lands on which day.
package plansvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/schedule"
)

const dateLayout = "2006-01-02"

// Date marshals as a calendar date with no time component. The planning
// service speaks whole days only.
type Date struct {
	time.Time
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("plansvc: parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

type availableDate struct {
	Date    Date   `json:"date"`
	Weekday string `json:"weekday"`
}

type planRequest struct {
	WorkspaceID    uuid.UUID       `json:"workspace_id"`
	StartDate      Date            `json:"start_date"`
	EndDate        Date            `json:"end_date"`
	AvailableDates []availableDate `json:"available_dates"`
}

type planResponse struct {
	Assignments []struct {
		ID   uuid.UUID `json:"id"`
		Date Date      `json:"date"`
	} `json:"assignments"`
}

// Client implements schedule.PlanService against the planning service's
// REST endpoint.
//
// The HTTP client carries no timeout; plan computation over a large
// backlog can run long, so the caller's context is the only cancellation
// point.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given endpoint.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    &http.Client{},
	}
}

var _ schedule.PlanService = (*Client)(nil)

// Plan posts the capacity window and returns the service's assignments.
func (c *Client) Plan(ctx context.Context, req schedule.PlanRequest) ([]schedule.Assignment, error) {
	wire := planRequest{
		WorkspaceID: req.WorkspaceID,
		StartDate:   Date{req.StartDate},
		EndDate:     Date{req.EndDate},
	}
	for _, d := range req.AvailableDates {
		wire.AvailableDates = append(wire.AvailableDates, availableDate{Date: Date{d.Date}, Weekday: d.Weekday})
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("plansvc.Client.Plan: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/plan", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("plansvc.Client.Plan: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("plansvc.Client.Plan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("plansvc.Client.Plan: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded planResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("plansvc.Client.Plan: decode: %w", err)
	}

	out := make([]schedule.Assignment, 0, len(decoded.Assignments))
	for _, a := range decoded.Assignments {
		out = append(out, schedule.Assignment{TaskID: a.ID, Date: a.Date.Time})
	}
	return out, nil
}
