// AngelaMos | 2026
// quota_test.go

package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

var admin = policy.Principal{UserID: "admin", TenantID: "acme", Role: policy.RoleTenantAdmin}

func TestCheckBoundary(t *testing.T) {
	limits := Limits{MaxUsers: 5, MaxProjects: 3}

	assert.True(t, Check(limits, 2, KindProject).Allowed, "creating the 3rd project")
	assert.False(t, Check(limits, 3, KindProject).Allowed, "creating the 4th project")
	assert.True(t, Check(limits, 4, KindUser).Allowed)

	d := Check(limits, 5, KindUser)
	assert.False(t, d.Allowed)
	assert.Equal(t, policy.LimitReached, d.Reason)
}

type stubStore struct {
	limits   Limits
	users    int
	projects int
	err      error
}

func (s stubStore) LimitsForUpdate(context.Context, string) (Limits, error) {
	return s.limits, s.err
}

func (s stubStore) CountUsers(context.Context, string) (int, error) { return s.users, nil }

func (s stubStore) CountProjects(context.Context, string) (int, error) { return s.projects, nil }

func TestCheckAndReserve(t *testing.T) {
	e := NewEnforcer(policy.NewEnforcer(nil, nil))
	ctx := context.Background()

	full := stubStore{limits: Limits{MaxUsers: 5, MaxProjects: 3}, users: 5, projects: 1}
	err := e.CheckAndReserve(ctx, full, admin, "acme", KindUser)

	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.LimitReached, denied.Reason)

	assert.NoError(t, e.CheckAndReserve(ctx, full, admin, "acme", KindProject))
}

func TestCheckAndReserveMissingTenant(t *testing.T) {
	e := NewEnforcer(nil)
	store := stubStore{err: core.MapDBError("lock tenant limits", errors.New("boom"))}

	err := e.CheckAndReserve(context.Background(), store, admin, "acme", KindProject)
	assert.Error(t, err)
}

func TestRepositoryLocksTenantRow(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT max_users, max_projects\s+FROM tenants\s+WHERE id = \$1\s+FOR UPDATE`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"max_users", "max_projects"}).AddRow(5, 3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM projects WHERE tenant_id = \$1`).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	err = core.SQLTransactor{DB: db}.WithTx(context.Background(), func(tx core.DBTX) error {
		return NewEnforcer(nil).CheckAndReserve(context.Background(), NewRepository(tx), admin, "acme", KindProject)
	})

	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.LimitReached, denied.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryMissingTenant(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	mock.ExpectQuery(`FROM tenants`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"max_users", "max_projects"}))

	_, err = NewRepository(db).LimitsForUpdate(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
