package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/server/middleware"
)

type CreateTaskInput struct {
	Body struct {
		Name        string      `json:"name" minLength:"1" maxLength:"500" doc:"Task name"`
		Description string      `json:"description,omitempty" doc:"Task description"`
		Date        *time.Time  `json:"date,omitempty" doc:"Scheduled day; omit for backlog"`
		ProjectID   *uuid.UUID  `json:"project_id,omitempty" doc:"Project ID"`
		MilestoneID *uuid.UUID  `json:"milestone_id,omitempty" doc:"Milestone ID (requires project_id)"`
		TagIDs      []uuid.UUID `json:"tag_ids,omitempty" doc:"Tag IDs"`
		Priority    *int        `json:"priority,omitempty" doc:"Task priority"`
		Assignee    *uuid.UUID  `json:"assignee,omitempty" doc:"Assigned user ID"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	Status      []string   `query:"status" doc:"Filter by status (repeatable)"`
	ProjectID   *uuid.UUID `query:"project_id" doc:"Filter by project"`
	MilestoneID *uuid.UUID `query:"milestone_id" doc:"Filter by milestone"`
	Source      string     `query:"integration_source" doc:"Filter by integration source"`
	Priority    *int       `query:"priority" doc:"Filter by priority"`
	DateFrom    *time.Time `query:"date_from" doc:"Scheduled on or after"`
	DateTo      *time.Time `query:"date_to" doc:"Scheduled on or before"`
	Unscheduled bool       `query:"unscheduled" doc:"Only backlog tasks"`
	Query       string     `query:"q" doc:"Fuzzy match over name and description"`
	Limit       int        `query:"limit" minimum:"0" maximum:"1000" doc:"Max rows"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Name        *string      `json:"name,omitempty" maxLength:"500" doc:"Task name"`
		Description *string      `json:"description,omitempty" doc:"Task description"`
		Date        *time.Time   `json:"date,omitempty" doc:"Scheduled day"`
		ClearDate   bool         `json:"clear_date,omitempty" doc:"Move back to backlog"`
		ProjectID   *uuid.UUID   `json:"project_id,omitempty" doc:"Project ID"`
		MilestoneID *uuid.UUID   `json:"milestone_id,omitempty" doc:"Milestone ID"`
		TagIDs      *[]uuid.UUID `json:"tag_ids,omitempty" doc:"Tag IDs"`
		Priority    *int         `json:"priority,omitempty" doc:"Task priority"`
		Assignee    *uuid.UUID   `json:"assignee,omitempty" doc:"Assigned user ID"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}
		userID, _ := middleware.UserIDFromContext(ctx)

		if input.Body.ProjectID != nil {
			if _, err := store.Projects().GetByID(ctx, workspaceID, *input.Body.ProjectID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("project not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate project")
			}
		}
		if input.Body.MilestoneID != nil {
			if input.Body.ProjectID == nil {
				return nil, huma.Error422UnprocessableEntity("milestone requires a project")
			}
			m, err := store.Milestones().GetByID(ctx, workspaceID, *input.Body.MilestoneID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("milestone not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate milestone")
			}
			if m.ProjectID != *input.Body.ProjectID {
				return nil, huma.Error422UnprocessableEntity("milestone belongs to a different project")
			}
		}

		now := time.Now()
		t := &domain.Task{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Date:        input.Body.Date,
			Status:      domain.TaskStatusPending,
			ProjectID:   input.Body.ProjectID,
			MilestoneID: input.Body.MilestoneID,
			TagIDs:      input.Body.TagIDs,
			Priority:    input.Body.Priority,
			Assignee:    input.Body.Assignee,
			Creator:     userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := t.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		filter := domain.TaskFilter{
			ProjectID:   input.ProjectID,
			MilestoneID: input.MilestoneID,
			Priority:    input.Priority,
			DateFrom:    input.DateFrom,
			DateTo:      input.DateTo,
			Unscheduled: input.Unscheduled,
			Query:       input.Query,
			Limit:       input.Limit,
		}
		for _, s := range input.Status {
			status := domain.TaskStatus(s)
			if !status.Valid() {
				return nil, huma.Error422UnprocessableEntity("unknown status " + s)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
		if input.Source != "" {
			source := domain.ProviderType(input.Source)
			if !source.Valid() {
				return nil, huma.Error422UnprocessableEntity("unknown integration source " + input.Source)
			}
			filter.IntegrationSource = &source
		}

		tasks, err := store.Tasks().List(ctx, workspaceID, filter)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		t, err := store.Tasks().GetByID(ctx, workspaceID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		existing, err := store.Tasks().GetByID(ctx, workspaceID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		// Imported tasks mirror their remote name and description; those
		// fields are only editable at the source.
		if existing.Imported() && (input.Body.Name != nil || input.Body.Description != nil) {
			return nil, huma.Error409Conflict("name and description of imported tasks are read-only")
		}

		patch := domain.TaskPatch{
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Date:        input.Body.Date,
			ClearDate:   input.Body.ClearDate,
			ProjectID:   input.Body.ProjectID,
			MilestoneID: input.Body.MilestoneID,
			TagIDs:      input.Body.TagIDs,
			Priority:    input.Body.Priority,
			Assignee:    input.Body.Assignee,
		}
		if patch.Empty() {
			return &UpdateTaskOutput{Body: existing}, nil
		}

		merged := existing.Apply(patch)
		if err := merged.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		if merged.MilestoneID != nil && merged.ProjectID != nil {
			m, mErr := store.Milestones().GetByID(ctx, workspaceID, *merged.MilestoneID)
			if mErr != nil {
				if errors.Is(mErr, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("milestone not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate milestone")
			}
			if m.ProjectID != *merged.ProjectID {
				return nil, huma.Error422UnprocessableEntity("milestone belongs to a different project")
			}
		}

		if err := store.Tasks().UpdatePatch(ctx, workspaceID, input.ID, patch); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		return &UpdateTaskOutput{Body: &merged}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete a task",
		Tags:          []string{"Tasks"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		if err := store.Tasks().Delete(ctx, workspaceID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		return nil, nil
	})
}
