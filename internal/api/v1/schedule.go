package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/server/middleware"
)

type DropInput struct {
	Body struct {
		Source      string      `json:"source" minLength:"1" doc:"Source container: backlog, YYYY-MM-DD, or a lane token"`
		Target      string      `json:"target" minLength:"1" doc:"Target container"`
		TaskID      uuid.UUID   `json:"task_id" doc:"Dragged task ID"`
		TargetItems []uuid.UUID `json:"target_items" doc:"Target container item IDs after the drop, dragged task included"`
		SourceItems []uuid.UUID `json:"source_items,omitempty" doc:"Source container item IDs remaining after the drop; required to re-sequence a day or lane source"`
	}
}

type DropOutput struct {
	Body struct {
		NoOp      bool `json:"noop"`
		Mutations int  `json:"mutations"`
	}
}

// RegisterDropRoutes handles drag-and-drop events from any view. The
// resolved mutations are applied as one bulk write; clients render the
// drop optimistically and revert from the invalidation stream on failure.
func RegisterDropRoutes(api huma.API, store DataStore, mutator schedule.Mutator, loc *time.Location) {
	huma.Register(api, huma.Operation{
		OperationID: "drop-task",
		Method:      http.MethodPost,
		Path:        "/board/drop",
		Summary:     "Apply a drag-and-drop event",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, input *DropInput) (*DropOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		source, err := domain.ParseContainer(input.Body.Source, loc)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("source: " + err.Error())
		}
		target, err := domain.ParseContainer(input.Body.Target, loc)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("target: " + err.Error())
		}

		task, err := store.Tasks().GetByID(ctx, workspaceID, input.Body.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to load task", err)
		}

		muts, err := schedule.Resolve(schedule.DropEvent{
			Source:      source,
			Target:      target,
			Task:        task,
			TargetItems: input.Body.TargetItems,
			SourceItems: input.Body.SourceItems,
			Location:    loc,
		})
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			return nil, huma.Error500InternalServerError("failed to resolve drop", err)
		}

		out := &DropOutput{}
		if len(muts) == 0 {
			out.Body.NoOp = true
			return out, nil
		}

		if err := mutator.Apply(ctx, workspaceID, muts); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return nil, huma.Error422UnprocessableEntity(err.Error())
			}
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("a task in the drop no longer exists")
			}
			return nil, huma.Error500InternalServerError("failed to apply drop", err)
		}

		out.Body.Mutations = len(muts)
		return out, nil
	})
}
