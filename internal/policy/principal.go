// AngelaMos | 2026
// principal.go

package policy

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Principal is the caller identity bound into an access token. TenantID
// is empty only for super_admin.
type Principal struct {
	UserID   string
	TenantID string
	Role     Role
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

func (p Principal) IsTenantAdmin() bool {
	return p.Role == RoleTenantAdmin
}

// MemberOf reports whether p may act inside tenantID at all.
func (p Principal) MemberOf(tenantID string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	return p.TenantID != "" && p.TenantID == tenantID
}

// TenantScope returns the tenant filter for list and mutation queries,
// nil when the caller spans all tenants.
func (p Principal) TenantScope() *string {
	if p.IsSuperAdmin() {
		return nil
	}
	id := p.TenantID
	return &id
}

type UserRef struct {
	ID       string
	TenantID string
	Role     Role
}

type ProjectRef struct {
	ID        string
	TenantID  string
	CreatedBy string
}

type TaskRef struct {
	ID       string
	TenantID string
}
