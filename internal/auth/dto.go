// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/tenant"
	"github.com/usha3107/multi-tenant-saas/internal/user"
)

type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"    validate:"required,min=1,max=255"`
	Subdomain     string `json:"subdomain"     validate:"required,min=3,max=63"`
	AdminEmail    string `json:"adminEmail"    validate:"required,email,max=255"`
	AdminPassword string `json:"adminPassword" validate:"required,min=8,max=128"`
	AdminFullName string `json:"adminFullName" validate:"required,min=1,max=255"`
}

// LoginRequest leaves tenantSubdomain empty for super_admin accounts.
type LoginRequest struct {
	Email           string `json:"email"           validate:"required,email,max=255"`
	Password        string `json:"password"        validate:"required,max=128"`
	TenantSubdomain string `json:"tenantSubdomain" validate:"omitempty,max=63"`
}

type RegisterTenantResponse struct {
	TenantID  string            `json:"tenantId"`
	Subdomain string            `json:"subdomain"`
	AdminUser user.UserResponse `json:"adminUser"`
}

type LoginResponse struct {
	User      user.UserResponse `json:"user"`
	Token     string            `json:"token"`
	ExpiresIn int               `json:"expiresIn"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type MeResponse struct {
	user.UserResponse
	Tenant *tenant.TenantResponse `json:"tenant"`
}
