// AngelaMos | 2026
// repository.go

package tenant

import (
	"context"
	"fmt"
	"strings"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	Update(ctx context.Context, id string, req UpdateTenantRequest) (*Tenant, error)
	Stats(ctx context.Context, id string) (Stats, error)
	List(ctx context.Context, params ListParams) ([]Summary, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const tenantColumns = `id, name, subdomain, status, subscription_plan,
	max_users, max_projects, created_at, updated_at`

func (r *repository) Create(ctx context.Context, t *Tenant) error {
	query := `
		INSERT INTO tenants (id, name, subdomain, status, subscription_plan, max_users, max_projects)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		t.ID,
		t.Name,
		t.Subdomain,
		t.Status,
		t.SubscriptionPlan,
		t.MaxUsers,
		t.MaxProjects,
	)
	if err := row.Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return core.MapDBError("create tenant", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`

	var t Tenant
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, core.MapDBError("get tenant", err)
	}

	return &t, nil
}

func (r *repository) GetBySubdomain(
	ctx context.Context,
	subdomain string,
) (*Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`

	var t Tenant
	if err := r.db.GetContext(ctx, &t, query, subdomain); err != nil {
		return nil, core.MapDBError("get tenant by subdomain", err)
	}

	return &t, nil
}

// Update applies every non-nil field in one statement.
func (r *repository) Update(
	ctx context.Context,
	id string,
	req UpdateTenantRequest,
) (*Tenant, error) {
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
	if req.Status != nil {
		set("status", *req.Status)
	}
	if req.SubscriptionPlan != nil {
		set("subscription_plan", *req.SubscriptionPlan)
	}
	if req.MaxUsers != nil {
		set("max_users", *req.MaxUsers)
	}
	if req.MaxProjects != nil {
		set("max_projects", *req.MaxProjects)
	}

	if len(sets) == 0 {
		return nil, core.InvalidInputError("no valid fields to update")
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE tenants
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), len(args), tenantColumns)

	var t Tenant
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, core.MapDBError("update tenant", err)
	}

	return &t, nil
}

func (r *repository) Stats(ctx context.Context, id string) (Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1) AS total_users,
			(SELECT COUNT(*) FROM projects WHERE tenant_id = $1) AS total_projects,
			(SELECT COUNT(*) FROM tasks WHERE tenant_id = $1) AS total_tasks`

	var s Stats
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return Stats{}, core.MapDBError("tenant stats", err)
	}

	return s, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Summary, int, error) {
	var conds core.Conditions

	if params.Status != "" {
		conds.Add("t.status = ?", params.Status)
	}
	if params.SubscriptionPlan != "" {
		conds.Add("t.subscription_plan = ?", params.SubscriptionPlan)
	}

	where := conds.Where()
	filterArgs := len(conds.Args)

	var total int
	countQuery := `SELECT COUNT(*) FROM tenants t ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, conds.Args[:filterArgs]...); err != nil {
		return nil, 0, core.MapDBError("count tenants", err)
	}

	limit := conds.Next(params.Page.Limit)
	offset := conds.Next(params.Page.Offset())

	query := fmt.Sprintf(`
		SELECT t.id, t.name, t.subdomain, t.status, t.subscription_plan,
		       t.max_users, t.max_projects, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.tenant_id = t.id) AS total_users,
		       (SELECT COUNT(*) FROM projects p WHERE p.tenant_id = t.id) AS total_projects
		FROM tenants t
		%s
		ORDER BY t.created_at DESC
		LIMIT %s OFFSET %s`,
		where, limit, offset)

	var rows []Summary
	if err := r.db.SelectContext(ctx, &rows, query, conds.Args...); err != nil {
		return nil, 0, core.MapDBError("list tenants", err)
	}

	return rows, total, nil
}
