// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"fmt"
	"strings"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	GetDetail(ctx context.Context, id string, scope *string) (*Detail, error)
	Update(ctx context.Context, id string, scope *string, req UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, id string, scope *string) error
	DeleteTasks(ctx context.Context, projectID string) (int64, error)
	List(ctx context.Context, params ListParams) ([]Detail, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const projectColumns = `id, tenant_id, name, COALESCE(description, '') AS description,
	status, created_by, created_at, updated_at`

const detailSelect = `
	SELECT p.id, p.tenant_id, p.name, COALESCE(p.description, '') AS description,
		p.status, p.created_by, p.created_at, p.updated_at,
		u.full_name AS creator_name,
		(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id) AS task_count,
		(SELECT COUNT(*) FROM tasks t
			WHERE t.project_id = p.id AND t.status = 'completed') AS completed_task_count
	FROM projects p
	LEFT JOIN users u ON u.id = p.created_by`

func (r *repository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (id, tenant_id, name, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.TenantID,
		p.Name,
		p.Description,
		p.Status,
		p.CreatedBy,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return core.MapDBError("create project", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p Project
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, core.MapDBError("get project", err)
	}

	return &p, nil
}

// GetDetail matches only rows in *scope when scope is non-nil.
func (r *repository) GetDetail(ctx context.Context, id string, scope *string) (*Detail, error) {
	var conds core.Conditions
	conds.Add("p.id = ?", id)
	if scope != nil {
		conds.Add("p.tenant_id = ?", *scope)
	}
	query := detailSelect + ` ` + conds.Where()

	var d Detail
	if err := r.db.GetContext(ctx, &d, query, conds.Args...); err != nil {
		return nil, core.MapDBError("get project detail", err)
	}

	return &d, nil
}

func (r *repository) Update(
	ctx context.Context,
	id string,
	scope *string,
	req UpdateProjectRequest,
) (*Project, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}

	if len(sets) == 0 {
		return nil, core.InvalidInputError("no valid fields to update")
	}

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if scope != nil {
		args = append(args, *scope)
		where += fmt.Sprintf(" AND tenant_id = $%d", len(args))
	}

	query := fmt.Sprintf(`
		UPDATE projects
		SET %s, updated_at = NOW()
		WHERE %s
		RETURNING %s`,
		strings.Join(sets, ", "), where, projectColumns)

	var p Project
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, core.MapDBError("update project", err)
	}

	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id string, scope *string) error {
	query := `DELETE FROM projects WHERE id = $1`
	args := []any{id}
	if scope != nil {
		query += ` AND tenant_id = $2`
		args = append(args, *scope)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete project: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteTasks(ctx context.Context, projectID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, fmt.Errorf("delete project tasks: %w", err)
	}

	return result.RowsAffected()
}

// List filters by params.TenantID when set; a nil TenantID spans every
// tenant and is only passed for super_admin callers.
func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Detail, int, error) {
	var conds core.Conditions

	if params.TenantID != nil {
		conds.Add("p.tenant_id = ?", *params.TenantID)
	}

	if params.Status != "" {
		conds.Add("p.status = ?", params.Status)
	}

	if params.Search != "" {
		conds.Add("p.name ILIKE ?", "%"+core.EscapeLike(params.Search)+"%")
	}

	where := conds.Where()
	filterArgs := len(conds.Args)

	var total int
	countQuery := `SELECT COUNT(*) FROM projects p ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, conds.Args[:filterArgs]...); err != nil {
		return nil, 0, core.MapDBError("count projects", err)
	}

	limit := conds.Next(params.Page.Limit)
	offset := conds.Next(params.Page.Offset())

	query := fmt.Sprintf(`%s
		%s
		ORDER BY p.created_at DESC
		LIMIT %s OFFSET %s`,
		detailSelect, where, limit, offset)

	var rows []Detail
	if err := r.db.SelectContext(ctx, &rows, query, conds.Args...); err != nil {
		return nil, 0, core.MapDBError("list projects", err)
	}

	return rows, total, nil
}
