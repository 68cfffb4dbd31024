// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

// Changes holds the resolved column values for an update. Nil pointers
// leave a column untouched; the Clear flags write NULL.
type Changes struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssignedTo    *string
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

func (c Changes) empty() bool {
	return c.Title == nil && c.Description == nil && c.Status == nil &&
		c.Priority == nil && c.AssignedTo == nil && !c.ClearAssignee &&
		c.DueDate == nil && !c.ClearDueDate
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	GetDetail(ctx context.Context, id string, scope *string) (*Detail, error)
	Update(ctx context.Context, id string, scope *string, c Changes) (*Task, error)
	Delete(ctx context.Context, id string, scope *string) error
	ListByProject(ctx context.Context, projectID string, scope *string, params ListParams) ([]Detail, int, error)
	ListAssigned(ctx context.Context, userID string, scope *string, params ListParams) ([]Detail, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const taskColumns = `id, project_id, tenant_id, title, COALESCE(description, '') AS description,
	status, priority, assigned_to, due_date, created_at, updated_at`

const detailSelect = `
	SELECT t.id, t.project_id, t.tenant_id, t.title,
		COALESCE(t.description, '') AS description,
		t.status, t.priority, t.assigned_to, t.due_date, t.created_at, t.updated_at,
		u.full_name AS assignee_name, u.email AS assignee_email,
		p.name AS project_name
	FROM tasks t
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assigned_to`

// Create copies tenant_id from the parent project row in the same
// statement. No row is inserted when the project is not in t.TenantID.
func (r *repository) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (id, project_id, tenant_id, title, description,
			status, priority, assigned_to, due_date)
		SELECT $1, p.id, p.tenant_id, $3, $4, $5, $6, $7, $8
		FROM projects p
		WHERE p.id = $2 AND p.tenant_id = $9
		RETURNING tenant_id, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		t.ID,
		t.ProjectID,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.AssignedTo,
		t.DueDate,
		t.TenantID,
	)
	if err := row.Scan(&t.TenantID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return core.MapDBError("create task", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var t Task
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, core.MapDBError("get task", err)
	}

	return &t, nil
}

// GetDetail matches only rows in *scope when scope is non-nil.
func (r *repository) GetDetail(ctx context.Context, id string, scope *string) (*Detail, error) {
	var conds core.Conditions
	conds.Add("t.id = ?", id)
	if scope != nil {
		conds.Add("t.tenant_id = ?", *scope)
	}
	query := detailSelect + ` ` + conds.Where()

	var d Detail
	if err := r.db.GetContext(ctx, &d, query, conds.Args...); err != nil {
		return nil, core.MapDBError("get task detail", err)
	}

	return &d, nil
}

// Update never touches project_id or tenant_id.
func (r *repository) Update(
	ctx context.Context,
	id string,
	scope *string,
	c Changes,
) (*Task, error) {
	if c.empty() {
		return nil, core.InvalidInputError("no valid fields to update")
	}

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if c.Title != nil {
		set("title", *c.Title)
	}
	if c.Description != nil {
		set("description", *c.Description)
	}
	if c.Status != nil {
		set("status", *c.Status)
	}
	if c.Priority != nil {
		set("priority", *c.Priority)
	}
	switch {
	case c.ClearAssignee:
		sets = append(sets, "assigned_to = NULL")
	case c.AssignedTo != nil:
		set("assigned_to", *c.AssignedTo)
	}
	switch {
	case c.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	case c.DueDate != nil:
		set("due_date", *c.DueDate)
	}

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if scope != nil {
		args = append(args, *scope)
		where += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s, updated_at = NOW()
		WHERE %s
		RETURNING %s`,
		strings.Join(sets, ", "), where, taskColumns)

	var t Task
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, core.MapDBError("update task", err)
	}

	return &t, nil
}

func (r *repository) Delete(ctx context.Context, id string, scope *string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	args := []any{id}
	if scope != nil {
		query += ` AND tenant_id = $2`
		args = append(args, *scope)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByProject(
	ctx context.Context,
	projectID string,
	scope *string,
	params ListParams,
) ([]Detail, int, error) {
	var conds core.Conditions
	conds.Add("t.project_id = ?", projectID)
	if scope != nil {
		conds.Add("t.tenant_id = ?", *scope)
	}
	applyFilters(&conds, params)

	return r.list(ctx, &conds, params.Page, priorityOrder+", t.due_date ASC NULLS LAST")
}

func (r *repository) ListAssigned(
	ctx context.Context,
	userID string,
	scope *string,
	params ListParams,
) ([]Detail, int, error) {
	var conds core.Conditions
	conds.Add("t.assigned_to = ?", userID)
	if scope != nil {
		conds.Add("t.tenant_id = ?", *scope)
	}
	params.AssignedTo = ""
	applyFilters(&conds, params)

	return r.list(ctx, &conds, params.Page, "t.due_date ASC NULLS LAST, t.created_at DESC")
}

const priorityOrder = `CASE t.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC`

func applyFilters(conds *core.Conditions, params ListParams) {
	if params.Status != "" {
		conds.Add("t.status = ?", params.Status)
	}
	if params.Priority != "" {
		conds.Add("t.priority = ?", params.Priority)
	}
	if params.AssignedTo != "" {
		conds.Add("t.assigned_to = ?", params.AssignedTo)
	}
	if params.Search != "" {
		conds.Add("t.title ILIKE ?", "%"+core.EscapeLike(params.Search)+"%")
	}
}

func (r *repository) list(
	ctx context.Context,
	conds *core.Conditions,
	page core.Page,
	orderBy string,
) ([]Detail, int, error) {
	where := conds.Where()
	filterArgs := len(conds.Args)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks t ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, conds.Args[:filterArgs]...); err != nil {
		return nil, 0, core.MapDBError("count tasks", err)
	}

	limit := conds.Next(page.Limit)
	offset := conds.Next(page.Offset())

	query := fmt.Sprintf(`%s
		%s
		ORDER BY %s
		LIMIT %s OFFSET %s`,
		detailSelect, where, orderBy, limit, offset)

	var rows []Detail
	if err := r.db.SelectContext(ctx, &rows, query, conds.Args...); err != nil {
		return nil, 0, core.MapDBError("list tasks", err)
	}

	return rows, total, nil
}
