package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planar-app/planar/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `id, workspace_id, name, description, date, status, sort_order, completed_at,
        project_id, milestone_id, tag_ids, priority, integration_source, external_id, external_data,
        host, assignee, creator, created_at, updated_at`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, workspace_id, name, description, date, status, sort_order, completed_at,
		        project_id, milestone_id, tag_ids, priority, integration_source, external_id, external_data,
		        host, assignee, creator, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		t.ID, t.WorkspaceID, t.Name, t.Description, t.Date, t.Status, t.Order, t.CompletedAt,
		t.ProjectID, t.MilestoneID, t.TagIDs, t.Priority, t.IntegrationSource, t.ExternalID, t.ExternalData,
		t.Host, t.Assignee, t.Creator, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) List(ctx context.Context, workspaceID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	where := []string{"workspace_id = $1"}
	args := []any{workspaceID}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.Statuses) > 0 {
		where = append(where, "status = ANY("+arg(filter.Statuses)+")")
	}
	if filter.ProjectID != nil {
		where = append(where, "project_id = "+arg(*filter.ProjectID))
	}
	if filter.MilestoneID != nil {
		where = append(where, "milestone_id = "+arg(*filter.MilestoneID))
	}
	if filter.IntegrationSource != nil {
		where = append(where, "integration_source = "+arg(*filter.IntegrationSource))
	}
	if len(filter.TagIDs) > 0 {
		where = append(where, "tag_ids && "+arg(filter.TagIDs))
	}
	if filter.Priority != nil {
		where = append(where, "priority = "+arg(*filter.Priority))
	}
	if filter.Unscheduled {
		where = append(where, "date IS NULL")
	}
	if filter.DateFrom != nil {
		where = append(where, "date >= "+arg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, "date <= "+arg(*filter.DateTo))
	}
	if filter.Query != "" {
		where = append(where, "name ILIKE "+arg("%"+filter.Query+"%"))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date NULLS FIRST, sort_order, created_at LIMIT ` + arg(limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.List")
}

// UpdatePatch writes exactly the fields the patch carries. An empty patch
// is a no-op, not an error.
func (r *TaskRepo) UpdatePatch(ctx context.Context, workspaceID, id uuid.UUID, patch domain.TaskPatch) error {
	if patch.Empty() {
		return nil
	}

	set := []string{"updated_at = now()"}
	args := []any{workspaceID, id}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if patch.Name != nil {
		set = append(set, "name = "+arg(*patch.Name))
	}
	if patch.Description != nil {
		set = append(set, "description = "+arg(*patch.Description))
	}
	switch {
	case patch.ClearDate:
		set = append(set, "date = NULL")
	case patch.Date != nil:
		set = append(set, "date = "+arg(*patch.Date))
	}
	if patch.Status != nil {
		set = append(set, "status = "+arg(*patch.Status))
	}
	if patch.Order != nil {
		set = append(set, "sort_order = "+arg(*patch.Order))
	}
	switch {
	case patch.ClearCompletedAt:
		set = append(set, "completed_at = NULL")
	case patch.CompletedAt != nil:
		set = append(set, "completed_at = "+arg(*patch.CompletedAt))
	}
	switch {
	case patch.ClearProject:
		set = append(set, "project_id = NULL")
	case patch.ProjectID != nil:
		set = append(set, "project_id = "+arg(*patch.ProjectID))
	}
	switch {
	case patch.ClearMilestone:
		set = append(set, "milestone_id = NULL")
	case patch.MilestoneID != nil:
		set = append(set, "milestone_id = "+arg(*patch.MilestoneID))
	}
	if patch.TagIDs != nil {
		set = append(set, "tag_ids = "+arg(*patch.TagIDs))
	}
	switch {
	case patch.ClearPriority:
		set = append(set, "priority = NULL")
	case patch.Priority != nil:
		set = append(set, "priority = "+arg(*patch.Priority))
	}
	if patch.Assignee != nil {
		set = append(set, "assignee = "+arg(*patch.Assignee))
	}

	query := `UPDATE tasks SET ` + strings.Join(set, ", ") + ` WHERE workspace_id = $1 AND id = $2`

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("taskRepo.UpdatePatch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.UpdatePatch: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE workspace_id = $1 AND id = $2`,
		workspaceID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) CountScheduledPerDay(ctx context.Context, workspaceID uuid.UUID, start, end time.Time) ([]domain.DayCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('day', date), count(*) FROM tasks
		 WHERE workspace_id = $1 AND date IS NOT NULL AND date >= $2 AND date <= $3
		 GROUP BY date_trunc('day', date)
		 ORDER BY date_trunc('day', date)`,
		workspaceID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.CountScheduledPerDay: %w", err)
	}
	defer rows.Close()

	var counts []domain.DayCount
	for rows.Next() {
		var c domain.DayCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("taskRepo.CountScheduledPerDay: scan: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskRepo.CountScheduledPerDay: rows: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.WorkspaceID, &t.Name, &t.Description, &t.Date, &t.Status, &t.Order, &t.CompletedAt,
		&t.ProjectID, &t.MilestoneID, &t.TagIDs, &t.Priority, &t.IntegrationSource, &t.ExternalID, &t.ExternalData,
		&t.Host, &t.Assignee, &t.Creator, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
