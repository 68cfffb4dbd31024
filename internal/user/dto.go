// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type CreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"fullName" validate:"required,min=1,max=255"`
	Role     string `json:"role"     validate:"omitempty,oneof=user tenant_admin super_admin"`
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=255"`
	Role     *string `json:"role,omitempty"     validate:"omitempty,oneof=user tenant_admin super_admin"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func (r UpdateUserRequest) Fields() []string {
	var fields []string
	if r.FullName != nil {
		fields = append(fields, policy.UserFieldFullName)
	}
	if r.Role != nil {
		fields = append(fields, policy.UserFieldRole)
	}
	if r.IsActive != nil {
		fields = append(fields, policy.UserFieldIsActive)
	}
	return fields
}

func (r UpdateUserRequest) RequestedRole() policy.Role {
	if r.Role == nil {
		return ""
	}
	return policy.Role(*r.Role)
}

type UserResponse struct {
	ID        string    `json:"id"`
	TenantID  *string   `json:"tenantId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListParams struct {
	Page   core.Page
	Search string
	Role   string
}

const defaultListLimit = 50

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
