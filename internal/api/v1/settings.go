package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/server/middleware"
	"github.com/planar-app/planar/internal/store/redis"
)

type GetViewSettingInput struct {
	Key string `path:"key" minLength:"1" maxLength:"128" doc:"Stable view context key"`
}

type GetViewSettingOutput struct {
	Body redis.ViewSetting
}

type PutViewSettingInput struct {
	Key  string `path:"key" minLength:"1" maxLength:"128" doc:"Stable view context key"`
	Body struct {
		ViewMode string `json:"view_mode" enum:"calendar,kanban" doc:"Board rendering mode"`
		SortBy   string `json:"sort_by,omitempty" doc:"Sort field"`
	}
}

type BacklogPanelOutput struct {
	Body struct {
		Open bool `json:"open"`
	}
}

type PutBacklogPanelInput struct {
	Body struct {
		Open bool `json:"open"`
	}
}

func RegisterSettingsRoutes(api huma.API, settings SettingsStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-view-setting",
		Method:      http.MethodGet,
		Path:        "/settings/views/{key}",
		Summary:     "Saved presentation state for one view",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, input *GetViewSettingInput) (*GetViewSettingOutput, error) {
		workspaceID, userID, err := identity(ctx)
		if err != nil {
			return nil, err
		}

		s, getErr := settings.GetViewSetting(ctx, workspaceID, userID, input.Key)
		if getErr != nil {
			return nil, huma.Error500InternalServerError("failed to load view setting", getErr)
		}

		return &GetViewSettingOutput{Body: s}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "put-view-setting",
		Method:        http.MethodPut,
		Path:          "/settings/views/{key}",
		Summary:       "Save presentation state for one view",
		Tags:          []string{"Settings"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *PutViewSettingInput) (*struct{}, error) {
		workspaceID, userID, err := identity(ctx)
		if err != nil {
			return nil, err
		}

		sortBy := input.Body.SortBy
		if sortBy == "" {
			sortBy = "order"
		}
		s := redis.ViewSetting{ViewMode: input.Body.ViewMode, SortBy: sortBy}
		if saveErr := settings.SaveViewSetting(ctx, workspaceID, userID, input.Key, s); saveErr != nil {
			if errors.Is(saveErr, domain.ErrValidation) {
				return nil, huma.Error422UnprocessableEntity(saveErr.Error())
			}
			return nil, huma.Error500InternalServerError("failed to save view setting", saveErr)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-backlog-panel",
		Method:      http.MethodGet,
		Path:        "/settings/backlog-panel",
		Summary:     "Backlog side panel state",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, _ *struct{}) (*BacklogPanelOutput, error) {
		workspaceID, userID, err := identity(ctx)
		if err != nil {
			return nil, err
		}

		open, getErr := settings.GetBacklogPanelOpen(ctx, workspaceID, userID)
		if getErr != nil {
			return nil, huma.Error500InternalServerError("failed to load panel state", getErr)
		}

		out := &BacklogPanelOutput{}
		out.Body.Open = open
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "put-backlog-panel",
		Method:        http.MethodPut,
		Path:          "/settings/backlog-panel",
		Summary:       "Save backlog side panel state",
		Tags:          []string{"Settings"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *PutBacklogPanelInput) (*struct{}, error) {
		workspaceID, userID, err := identity(ctx)
		if err != nil {
			return nil, err
		}

		if setErr := settings.SetBacklogPanelOpen(ctx, workspaceID, userID, input.Body.Open); setErr != nil {
			return nil, huma.Error500InternalServerError("failed to save panel state", setErr)
		}

		return nil, nil
	})
}

func identity(ctx context.Context) (workspaceID, userID uuid.UUID, err error) {
	workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, huma.Error403Forbidden("missing workspace context")
	}
	userID, ok = middleware.UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, huma.Error403Forbidden("missing user context")
	}
	return workspaceID, userID, nil
}
