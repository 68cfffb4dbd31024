// AngelaMos | 2026
// user_test.go

package user

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/core/coretest"
	"github.com/usha3107/multi-tenant-saas/internal/middleware"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
	"github.com/usha3107/multi-tenant-saas/internal/quota"
)

type memRepo struct {
	users       map[string]*User
	assignments map[string]string
	limits      map[string]quota.Limits
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:       map[string]*User{},
		assignments: map[string]string{},
		limits:      map[string]quota.Limits{"acme": {MaxUsers: 5, MaxProjects: 3}},
	}
}

func (m *memRepo) add(id, tenantID string, role policy.Role) *User {
	u := &User{ID: id, Email: id + "@example.com", FullName: id, Role: role.String(), IsActive: true}
	if tenantID != "" {
		u.TenantID = &tenantID
	}
	m.users[id] = u
	return u
}

func (m *memRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email && existing.Tenant() == u.Tenant() {
			return core.ErrDuplicateKey
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetInScope(ctx context.Context, id string, scope *string) (*User, error) {
	u, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if scope != nil && (u.TenantID == nil || *u.TenantID != *scope) {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (m *memRepo) GetByEmailInTenant(_ context.Context, email, tenantID string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email && u.Tenant() == tenantID {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) GetSuperAdminByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email && u.TenantID == nil {
			return u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) Update(_ context.Context, id string, scope *string, req UpdateUserRequest) (*User, error) {
	u, ok := m.users[id]
	if !ok || (scope != nil && u.Tenant() != *scope) {
		return nil, core.ErrNotFound
	}
	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string, scope *string) error {
	u, ok := m.users[id]
	if !ok || (scope != nil && u.Tenant() != *scope) {
		return core.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) ClearTaskAssignments(_ context.Context, userID string) (int64, error) {
	var n int64
	for task, assignee := range m.assignments {
		if assignee == userID {
			m.assignments[task] = ""
			n++
		}
	}
	return n, nil
}

func (m *memRepo) List(_ context.Context, tenantID string, params ListParams) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if u.Tenant() != tenantID {
			continue
		}
		if params.Role != "" && u.Role != params.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memRepo) LimitsForUpdate(_ context.Context, tenantID string) (quota.Limits, error) {
	l, ok := m.limits[tenantID]
	if !ok {
		return quota.Limits{}, core.ErrNotFound
	}
	return l, nil
}

func (m *memRepo) CountUsers(_ context.Context, tenantID string) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Tenant() == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) CountProjects(context.Context, string) (int, error) {
	return 0, nil
}

type memAudit struct {
	entries []audit.Entry
}

func (m *memAudit) Emit(_ context.Context, e audit.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

var (
	acmeAdmin = policy.Principal{UserID: "admin-1", TenantID: "acme", Role: policy.RoleTenantAdmin}
	acmeUser  = policy.Principal{UserID: "user-1", TenantID: "acme", Role: policy.RoleUser}
	root      = policy.Principal{UserID: "root", Role: policy.RoleSuperAdmin}
)

func seeded() *memRepo {
	repo := newMemRepo()
	repo.add("admin-1", "acme", policy.RoleTenantAdmin)
	repo.add("user-1", "acme", policy.RoleUser)
	repo.add("user-2", "acme", policy.RoleUser)
	repo.add("globex-1", "globex", policy.RoleUser)
	repo.add("root", "", policy.RoleSuperAdmin)
	return repo
}

func newTestService(repo *memRepo, tx *coretest.Tx, em audit.Emitter) *Service {
	pe := policy.NewEnforcer(nil, nil)
	return NewService(
		tx,
		func(core.DBTX) Repository { return repo },
		func(core.DBTX) quota.Store { return repo },
		quota.NewEnforcer(pe),
		pe,
		em,
	)
}

func ptr[T any](v T) *T { return &v }

func newUser(email string) CreateUserRequest {
	return CreateUserRequest{Email: email, Password: "Secret123", FullName: "New Person"}
}

func TestCreateUserQuotaThenDeleteFreesSlot(t *testing.T) {
	repo := seeded()
	repo.add("user-3", "acme", policy.RoleUser)
	repo.add("user-4", "acme", policy.RoleUser)
	tx := &coretest.Tx{}
	svc := newTestService(repo, tx, audit.Nop{})
	ctx := context.Background()

	_, err := svc.Create(ctx, acmeAdmin, "acme", newUser("sixth@acme.test"))

	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.LimitReached, denied.Reason)
	assert.Equal(t, 1, tx.Rollbacks)

	require.NoError(t, svc.Delete(ctx, acmeAdmin, "user-4"))

	u, err := svc.Create(ctx, acmeAdmin, "acme", newUser("Sixth@Acme.test"))
	require.NoError(t, err)
	assert.Equal(t, "sixth@acme.test", u.Email)
	assert.Equal(t, "acme", u.Tenant())
	assert.Equal(t, policy.RoleUser.String(), u.Role)
	assert.NotEqual(t, "Secret123", u.PasswordHash)
}

func TestCreateUserRules(t *testing.T) {
	tests := []struct {
		name     string
		p        policy.Principal
		tenantID string
		role     string
		reason   policy.Reason
	}{
		{"regular user", acmeUser, "acme", "", policy.RoleRequired},
		{"other tenant", acmeAdmin, "globex", "", policy.CrossTenant},
		{"grant super admin", acmeAdmin, "acme", "super_admin", policy.FieldForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})
			req := newUser("x@acme.test")
			req.Role = tt.role

			_, err := svc.Create(context.Background(), tt.p, tt.tenantID, req)

			var denied *policy.DeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.reason, denied.Reason)
		})
	}
}

func TestCreateUserUnknownTenant(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})

	_, err := svc.Create(context.Background(), root, "nowhere", newUser("a@b.test"))

	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Contains(t, err.Error(), "tenant")
}

func TestCreateUserSuperAdminInTenantRejected(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})
	req := newUser("boss@acme.test")
	req.Role = "super_admin"

	_, err := svc.Create(context.Background(), root, "acme", req)

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestDeleteUserClearsAssignments(t *testing.T) {
	repo := seeded()
	repo.assignments["task-1"] = "user-2"
	repo.assignments["task-2"] = "user-2"
	repo.assignments["task-3"] = "user-1"
	em := &memAudit{}
	svc := newTestService(repo, &coretest.Tx{}, em)

	require.NoError(t, svc.Delete(context.Background(), acmeAdmin, "user-2"))

	assert.Len(t, repo.assignments, 3)
	assert.Equal(t, "", repo.assignments["task-1"])
	assert.Equal(t, "", repo.assignments["task-2"])
	assert.Equal(t, "user-1", repo.assignments["task-3"])
	require.Len(t, em.entries, 1)
	assert.Equal(t, audit.ActionDeleteUser, em.entries[0].Action)
	assert.Equal(t, "acme", em.entries[0].TenantID)
}

func TestDeleteUserDenied(t *testing.T) {
	tests := []struct {
		name   string
		p      policy.Principal
		target string
		reason policy.Reason
	}{
		{"self", acmeAdmin, "admin-1", policy.SelfDelete},
		{"super self", root, "root", policy.SelfDelete},
		{"regular user", acmeUser, "user-2", policy.RoleRequired},
		{"other tenant", acmeAdmin, "globex-1", policy.CrossTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seeded()
			svc := newTestService(repo, &coretest.Tx{}, audit.Nop{})

			err := svc.Delete(context.Background(), tt.p, tt.target)

			var denied *policy.DeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.reason, denied.Reason)
			assert.Contains(t, repo.users, tt.target)
		})
	}
}

func TestUpdateSelfFullNameOnly(t *testing.T) {
	repo := seeded()
	svc := newTestService(repo, &coretest.Tx{}, audit.Nop{})
	ctx := context.Background()

	u, err := svc.Update(ctx, acmeUser, "user-1", UpdateUserRequest{FullName: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.FullName)

	_, err = svc.Update(ctx, acmeUser, "user-1", UpdateUserRequest{Role: ptr("tenant_admin")})
	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.FieldForbidden, denied.Reason)
	assert.Equal(t, "user", repo.users["user-1"].Role)

	_, err = svc.Update(ctx, acmeUser, "user-2", UpdateUserRequest{FullName: ptr("Nope")})
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.NotOwner, denied.Reason)
}

func TestUpdateByAdminSetsRoleAndActive(t *testing.T) {
	repo := seeded()
	em := &memAudit{}
	svc := newTestService(repo, &coretest.Tx{}, em)

	u, err := svc.Update(context.Background(), acmeAdmin, "user-2", UpdateUserRequest{
		Role:     ptr("tenant_admin"),
		IsActive: ptr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, "tenant_admin", u.Role)
	assert.False(t, u.IsActive)
	require.Len(t, em.entries, 1)
	assert.Equal(t, audit.ActionUpdateUser, em.entries[0].Action)
}

func TestGetUserCrossTenant(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})

	ctx := context.Background()

	_, err := svc.Get(ctx, acmeUser, "globex-1")

	var denied *policy.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, policy.CrossTenant, denied.Reason)

	_, err = svc.Get(ctx, acmeUser, "ghost")
	require.ErrorIs(t, err, core.ErrNotFound)

	u, err := svc.Get(ctx, acmeUser, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "user-2", u.ID)

	u, err = svc.Get(ctx, root, "globex-1")
	require.NoError(t, err)
	require.NotNil(t, u.TenantID)
	assert.Equal(t, "globex", *u.TenantID)
}

func TestRefUnknownUser(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})

	ref, err := svc.Ref(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", ref.ID)
	assert.Empty(t, ref.TenantID)

	ref, err = svc.Ref(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "acme", ref.TenantID)
}

func serve(t *testing.T, svc *Service, p policy.Principal, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{Principal: p})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	router := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(router, inject)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerQuotaScenario(t *testing.T) {
	repo := seeded()
	repo.add("user-3", "acme", policy.RoleUser)
	repo.add("user-4", "acme", policy.RoleUser)
	svc := newTestService(repo, &coretest.Tx{}, audit.Nop{})
	body := `{"email":"sixth@acme.test","password":"Secret123","fullName":"Sixth"}`

	rec := serve(t, svc, acmeAdmin, http.MethodPost, "/tenants/acme/users", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "subscription limit reached")

	rec = serve(t, svc, acmeAdmin, http.MethodDelete, "/users/user-4", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, svc, acmeAdmin, http.MethodPost, "/tenants/acme/users", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandlerCreateValidation(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})

	rec := serve(t, svc, acmeAdmin, http.MethodPost, "/tenants/acme/users", `{"email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "fullName")
}

func TestHandlerDuplicateEmail(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})
	body := `{"email":"user-1@example.com","password":"Secret123","fullName":"Dup"}`

	rec := serve(t, svc, acmeAdmin, http.MethodPost, "/tenants/acme/users", body)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerListUsers(t *testing.T) {
	svc := newTestService(seeded(), &coretest.Tx{}, audit.Nop{})

	rec := serve(t, svc, acmeUser, http.MethodGet, "/tenants/acme/users?role=user", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":2`)
	assert.NotContains(t, rec.Body.String(), "globex-1")

	rec = serve(t, svc, acmeUser, http.MethodGet, "/tenants/globex/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRepositoryDeleteScopedToTenant(t *testing.T) {
	db, mock := coretest.NewMock(t)

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs("user-2", "acme").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRepository(db).Delete(context.Background(), "user-2", ptr("acme"))

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryGetInScope(t *testing.T) {
	db, mock := coretest.NewMock(t)

	mock.ExpectQuery(`FROM users WHERE id = \$1 AND tenant_id = \$2`).
		WithArgs("globex-1", "acme").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewRepository(db).GetInScope(context.Background(), "globex-1", ptr("acme"))

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryClearTaskAssignments(t *testing.T) {
	db, mock := coretest.NewMock(t)

	mock.ExpectExec(`UPDATE tasks\s+SET assigned_to = NULL`).
		WithArgs("user-2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewRepository(db).ClearTaskAssignments(context.Background(), "user-2")

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRepositoryListSearch(t *testing.T) {
	db, mock := coretest.NewMock(t)
	now := time.Now()
	cols := []string{
		"id", "tenant_id", "email", "password_hash", "full_name", "role",
		"is_active", "created_at", "updated_at",
	}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE tenant_id = \$1 AND \(email ILIKE \$2 OR full_name ILIKE \$2\)`).
		WithArgs("acme", `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
		WithArgs("acme", `%50\%%`, 50, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u1", "acme", "a@acme.test", "hash", "Fifty Percent", "user", true, now, now))

	users, total, err := NewRepository(db).List(context.Background(), "acme", ListParams{
		Page:   core.Page{Page: 1, Limit: 50},
		Search: "50%",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "acme", users[0].Tenant())
	assert.Equal(t, "Fifty Percent", users[0].FullName)
}

func TestRepositoryCreateDuplicate(t *testing.T) {
	db, mock := coretest.NewMock(t)
	tenantID := "acme"

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(fmt.Errorf("insert: %w", core.ErrDuplicateKey))

	err := NewRepository(db).Create(context.Background(), &User{ID: "u", TenantID: &tenantID})

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}
