package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/planar-app/planar/internal/schedule"
	"github.com/planar-app/planar/internal/server/middleware"
)

type RunPlanOutput struct {
	Body *schedule.PlanResponse
}

type PlannerStateOutput struct {
	Body struct {
		State    schedule.PlanState     `json:"state"`
		LastPlan *schedule.PlanResponse `json:"last_plan,omitempty"`
	}
}

func RegisterPlannerRoutes(api huma.API, planner PlannerService) {
	huma.Register(api, huma.Operation{
		OperationID: "run-planner",
		Method:      http.MethodPost,
		Path:        "/planner/run",
		Summary:     "Distribute backlog tasks across the coming weeks",
		Tags:        []string{"Planner"},
	}, func(ctx context.Context, _ *struct{}) (*RunPlanOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		plan, err := planner.Run(ctx, workspaceID)
		if err != nil {
			switch {
			case errors.Is(err, schedule.ErrNoAvailableDays):
				return nil, huma.Error409Conflict("every weekday in the planning window is at capacity")
			case errors.Is(err, schedule.ErrEmptyPlan):
				return nil, huma.Error502BadGateway("planning service returned an unusable plan")
			default:
				return nil, huma.Error500InternalServerError("planning run failed", err)
			}
		}

		return &RunPlanOutput{Body: plan}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "rollback-plan",
		Method:        http.MethodPost,
		Path:          "/planner/rollback",
		Summary:       "Undo the last planning run",
		Tags:          []string{"Planner"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		plan, ok := planner.LastPlan(workspaceID)
		if !ok {
			return nil, huma.Error404NotFound("no plan to roll back")
		}

		if err := planner.Rollback(ctx, plan); err != nil {
			if errors.Is(err, schedule.ErrPlanExpired) {
				return nil, huma.Error404NotFound("no plan to roll back")
			}
			return nil, huma.Error500InternalServerError("rollback failed", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-planner-state",
		Method:      http.MethodGet,
		Path:        "/planner/state",
		Summary:     "Current planner state and retained plan",
		Tags:        []string{"Planner"},
	}, func(ctx context.Context, _ *struct{}) (*PlannerStateOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		out := &PlannerStateOutput{}
		out.Body.State = planner.State(workspaceID)
		if plan, ok := planner.LastPlan(workspaceID); ok {
			out.Body.LastPlan = plan
		}
		return out, nil
	})
}
