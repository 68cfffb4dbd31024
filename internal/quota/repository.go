// AngelaMos | 2026
// repository.go

package quota

import (
	"context"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Store {
	return &repository{db: db}
}

func (r *repository) LimitsForUpdate(
	ctx context.Context,
	tenantID string,
) (Limits, error) {
	query := `
		SELECT max_users, max_projects
		FROM tenants
		WHERE id = $1
		FOR UPDATE`

	var limits Limits
	if err := r.db.GetContext(ctx, &limits, query, tenantID); err != nil {
		return Limits{}, core.MapDBError("lock tenant limits", err)
	}

	return limits, nil
}

func (r *repository) CountUsers(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, core.MapDBError("count users", err)
	}
	return n, nil
}

func (r *repository) CountProjects(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, core.MapDBError("count projects", err)
	}
	return n, nil
}
