package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/server/middleware"
)

type ListIntegrationsOutput struct {
	Body []*domain.Integration
}

type UpdateIntegrationInput struct {
	ID   uuid.UUID `path:"id" doc:"Integration ID"`
	Body struct {
		SyncStatus string `json:"sync_status" enum:"auto,prompt,never" doc:"Completion sync policy"`
	}
}

type UpdateIntegrationOutput struct {
	Body *domain.Integration
}

func RegisterIntegrationRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-integrations",
		Method:      http.MethodGet,
		Path:        "/integrations",
		Summary:     "List the workspace's tracker integrations",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, _ *struct{}) (*ListIntegrationsOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		integrations, err := store.Integrations().List(ctx, workspaceID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list integrations", err)
		}

		return &ListIntegrationsOutput{Body: integrations}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-integration",
		Method:      http.MethodPatch,
		Path:        "/integrations/{id}",
		Summary:     "Change an integration's sync policy",
		Tags:        []string{"Integrations"},
	}, func(ctx context.Context, input *UpdateIntegrationInput) (*UpdateIntegrationOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		policy := domain.SyncPolicy(input.Body.SyncStatus)
		if err := store.Integrations().UpdateSyncPolicy(ctx, workspaceID, input.ID, policy); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("integration not found")
			}
			return nil, huma.Error500InternalServerError("failed to update integration", err)
		}

		updated, err := store.Integrations().GetByID(ctx, workspaceID, input.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load integration", err)
		}

		return &UpdateIntegrationOutput{Body: updated}, nil
	})
}
