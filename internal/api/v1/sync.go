package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/server/middleware"
	"github.com/planar-app/planar/internal/tracker"
)

type CompleteTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Completed bool `json:"completed" doc:"true to complete, false to reopen"`
	}
}

type CompleteTaskOutput struct {
	Body *tracker.Outcome
}

type SyncDecisionInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Kind         string `json:"kind" enum:"confirm,decline,transition,cancel" doc:"The user's answer"`
		TransitionID string `json:"transition_id,omitempty" doc:"Chosen transition, kind=transition only"`
	}
}

type SyncDecisionOutput struct {
	Body *tracker.Outcome
}

func RegisterSyncRoutes(api huma.API, syncer SyncService) {
	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/complete",
		Summary:     "Toggle completion, syncing to the task's tracker per policy",
		Tags:        []string{"Sync"},
	}, func(ctx context.Context, input *CompleteTaskInput) (*CompleteTaskOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		outcome, err := syncer.Toggle(ctx, workspaceID, input.ID, input.Body.Completed)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to toggle completion", err)
		}

		return &CompleteTaskOutput{Body: outcome}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sync-decision",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/sync-decision",
		Summary:     "Answer a pending sync prompt",
		Tags:        []string{"Sync"},
	}, func(ctx context.Context, input *SyncDecisionInput) (*SyncDecisionOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		outcome, err := syncer.Decide(ctx, workspaceID, input.ID, tracker.Decision{
			Kind:         tracker.DecisionKind(input.Body.Kind),
			TransitionID: input.Body.TransitionID,
		})
		if err != nil {
			switch {
			case errors.Is(err, tracker.ErrNoPendingSync):
				return nil, huma.Error404NotFound("no pending sync decision for this task")
			case errors.Is(err, domain.ErrValidation):
				return nil, huma.Error422UnprocessableEntity(err.Error())
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound("task not found")
			default:
				return nil, huma.Error500InternalServerError("failed to apply decision", err)
			}
		}

		return &SyncDecisionOutput{Body: outcome}, nil
	})
}
