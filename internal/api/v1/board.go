package v1

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/planar-app/planar/internal/domain"
	"github.com/planar-app/planar/internal/server/middleware"
)

type CalendarDay struct {
	Date  time.Time      `json:"date"`
	Tasks []*domain.Task `json:"tasks"`
}

type CalendarBoardInput struct {
	Start time.Time `query:"start" required:"true" doc:"First day of the window"`
	End   time.Time `query:"end" required:"true" doc:"Last day of the window"`
}

type CalendarBoardOutput struct {
	Body struct {
		Days    []CalendarDay  `json:"days"`
		Backlog []*domain.Task `json:"backlog"`
	}
}

type KanbanLane struct {
	Lane  domain.Lane    `json:"lane"`
	Tasks []*domain.Task `json:"tasks"`
}

type KanbanBoardOutput struct {
	Body struct {
		Lanes []KanbanLane `json:"lanes"`
	}
}

// RegisterBoardRoutes serves the two read views over the same task rows.
// Both order tasks by their container-relative position so that a drop in
// one view is reflected identically in the other after invalidation.
func RegisterBoardRoutes(api huma.API, store DataStore, loc *time.Location) {
	huma.Register(api, huma.Operation{
		OperationID: "get-calendar-board",
		Method:      http.MethodGet,
		Path:        "/board/calendar",
		Summary:     "Calendar view: per-day columns plus the backlog",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, input *CalendarBoardInput) (*CalendarBoardOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}
		if input.End.Before(input.Start) {
			return nil, huma.Error422UnprocessableEntity("end must not precede start")
		}

		start := domain.StartOfDay(input.Start, loc)
		end := domain.StartOfDay(input.End, loc)

		scheduled, err := store.Tasks().List(ctx, workspaceID, domain.TaskFilter{
			DateFrom: &start,
			DateTo:   &end,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list scheduled tasks", err)
		}

		backlog, err := store.Tasks().List(ctx, workspaceID, domain.TaskFilter{Unscheduled: true})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list backlog", err)
		}

		byDay := make(map[time.Time][]*domain.Task)
		for _, t := range scheduled {
			if t.Date == nil {
				continue
			}
			day := domain.StartOfDay(*t.Date, loc)
			byDay[day] = append(byDay[day], t)
		}

		out := &CalendarBoardOutput{}
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			tasks := byDay[day]
			sortByOrder(tasks)
			out.Body.Days = append(out.Body.Days, CalendarDay{Date: day, Tasks: tasks})
		}
		sortByOrder(backlog)
		out.Body.Backlog = backlog

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-kanban-board",
		Method:      http.MethodGet,
		Path:        "/board/kanban",
		Summary:     "Kanban view: one lane per status",
		Tags:        []string{"Board"},
	}, func(ctx context.Context, _ *struct{}) (*KanbanBoardOutput, error) {
		workspaceID, ok := middleware.WorkspaceIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing workspace context")
		}

		tasks, err := store.Tasks().List(ctx, workspaceID, domain.TaskFilter{})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		byLane := make(map[domain.Lane][]*domain.Task)
		for _, t := range tasks {
			lane := domain.LaneForStatus(t.Status)
			byLane[lane] = append(byLane[lane], t)
		}

		out := &KanbanBoardOutput{}
		for _, lane := range []domain.Lane{domain.LaneTodo, domain.LaneInProgress, domain.LaneDone} {
			laneTasks := byLane[lane]
			sortByOrder(laneTasks)
			out.Body.Lanes = append(out.Body.Lanes, KanbanLane{Lane: lane, Tasks: laneTasks})
		}

		return out, nil
	})
}

func sortByOrder(tasks []*domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].Order < tasks[j].Order })
}
