package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProviderType names an external tracker.
type ProviderType string

const (
	ProviderGitHub  ProviderType = "github"
	ProviderTodoist ProviderType = "todoist"
	ProviderClickUp ProviderType = "clickup"
	ProviderJira    ProviderType = "jira"
)

// Valid reports whether p is a known provider.
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderGitHub, ProviderTodoist, ProviderClickUp, ProviderJira:
		return true
	default:
		return false
	}
}

type IntegrationStatus string

const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationInactive IntegrationStatus = "inactive"
	IntegrationError    IntegrationStatus = "error"
)

// SyncPolicy controls what happens to the remote tracker when a task's
// completion is toggled locally.
type SyncPolicy string

const (
	SyncAuto   SyncPolicy = "auto"
	SyncPrompt SyncPolicy = "prompt"
	SyncNever  SyncPolicy = "never"
)

// Normalize collapses absent or unknown policies to "never"; only an
// explicit value changes behavior.
func (p SyncPolicy) Normalize() SyncPolicy {
	switch p {
	case SyncAuto, SyncPrompt:
		return p
	default:
		return SyncNever
	}
}

// Integration is a per-workspace connection to one external tracker.
type Integration struct {
	ID               uuid.UUID         `json:"id"`
	WorkspaceID      uuid.UUID         `json:"workspace_id"`
	Type             ProviderType      `json:"type"`
	Status           IntegrationStatus `json:"status"`
	SyncStatus       SyncPolicy        `json:"sync_status"`
	DefaultProjectID *uuid.UUID        `json:"default_project_id,omitempty"`
	BaseURL          *string           `json:"base_url,omitempty"` // self-hosted instances
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type IntegrationRepository interface {
	Create(ctx context.Context, i *Integration) error
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*Integration, error)
	GetByType(ctx context.Context, workspaceID uuid.UUID, typ ProviderType) (*Integration, error)
	List(ctx context.Context, workspaceID uuid.UUID) ([]*Integration, error)
	UpdateSyncPolicy(ctx context.Context, workspaceID, id uuid.UUID, policy SyncPolicy) error
}
