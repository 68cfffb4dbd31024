// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

// User.TenantID is nil only for super_admin accounts.
type User struct {
	ID           string    `db:"id"`
	TenantID     *string   `db:"tenant_id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) Tenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

func (u *User) Ref() policy.UserRef {
	return policy.UserRef{
		ID:       u.ID,
		TenantID: u.Tenant(),
		Role:     policy.Role(u.Role),
	}
}

func (u *User) Principal() policy.Principal {
	return policy.Principal{
		UserID:   u.ID,
		TenantID: u.Tenant(),
		Role:     policy.Role(u.Role),
	}
}
