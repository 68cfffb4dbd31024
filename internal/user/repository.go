// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetInScope(ctx context.Context, id string, scope *string) (*User, error)
	GetByEmailInTenant(ctx context.Context, email, tenantID string) (*User, error)
	GetSuperAdminByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, scope *string, req UpdateUserRequest) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string, scope *string) error
	ClearTaskAssignments(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, tenantID string, params ListParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, tenant_id, email, password_hash, full_name, role,
	is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Role,
		user.IsActive,
	)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return core.MapDBError("create user", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, core.MapDBError("get user", err)
	}

	return &user, nil
}

// GetInScope is GetByID restricted to *scope when scope is non-nil.
func (r *repository) GetInScope(ctx context.Context, id string, scope *string) (*User, error) {
	if scope == nil {
		return r.GetByID(ctx, id)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND tenant_id = $2`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id, *scope); err != nil {
		return nil, core.MapDBError("get user", err)
	}

	return &user, nil
}

// GetByEmailInTenant never matches an account that belongs to another
// tenant, even when the email is the same.
func (r *repository) GetByEmailInTenant(
	ctx context.Context,
	email, tenantID string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND tenant_id = $2`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email, tenantID); err != nil {
		return nil, core.MapDBError("get user by email", err)
	}

	return &user, nil
}

func (r *repository) GetSuperAdminByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND tenant_id IS NULL AND role = 'super_admin'`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, core.MapDBError("get super admin", err)
	}

	return &user, nil
}

// Update writes every non-nil field in one statement. scope, when set,
// restricts the row to that tenant.
func (r *repository) Update(
	ctx context.Context,
	id string,
	scope *string,
	req UpdateUserRequest,
) (*User, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.FullName != nil {
		set("full_name", *req.FullName)
	}
	if req.Role != nil {
		set("role", *req.Role)
	}
	if req.IsActive != nil {
		set("is_active", *req.IsActive)
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
		UPDATE users
		SET %s, updated_at = NOW()
		WHERE %s
		RETURNING %s`,
		strings.Join(sets, ", "), where, userColumns)

	var user User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, core.MapDBError("update user", err)
	}

	return &user, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string, scope *string) error {
	query := `DELETE FROM users WHERE id = $1`
	args := []any{id}
	if scope != nil {
		query += ` AND tenant_id = $2`
		args = append(args, *scope)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

// ClearTaskAssignments unassigns the user's tasks; the tasks stay.
func (r *repository) ClearTaskAssignments(
	ctx context.Context,
	userID string,
) (int64, error) {
	query := `
		UPDATE tasks
		SET assigned_to = NULL, updated_at = NOW()
		WHERE assigned_to = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("clear task assignments: %w", err)
	}

	return result.RowsAffected()
}

func (r *repository) List(
	ctx context.Context,
	tenantID string,
	params ListParams,
) ([]User, int, error) {
	var conds core.Conditions
	conds.Add("tenant_id = ?", tenantID)

	if params.Search != "" {
		conds.Add("(email ILIKE ? OR full_name ILIKE ?)", "%"+core.EscapeLike(params.Search)+"%")
	}

	if params.Role != "" {
		conds.Add("role = ?", params.Role)
	}

	where := conds.Where()
	filterArgs := len(conds.Args)

	var total int
	countQuery := `SELECT COUNT(*) FROM users ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, conds.Args[:filterArgs]...); err != nil {
		return nil, 0, core.MapDBError("count users", err)
	}

	limit := conds.Next(params.Page.Limit)
	offset := conds.Next(params.Page.Offset())

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT %s OFFSET %s`,
		userColumns, where, limit, offset)

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, conds.Args...); err != nil {
		return nil, 0, core.MapDBError("list users", err)
	}

	return users, total, nil
}
