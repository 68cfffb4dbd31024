// AngelaMos | 2026
// dto.go

package tenant

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type UpdateTenantRequest struct {
	Name             *string `json:"name,omitempty"             validate:"omitempty,min=1,max=255"`
	Status           *string `json:"status,omitempty"           validate:"omitempty,oneof=active suspended"`
	SubscriptionPlan *string `json:"subscriptionPlan,omitempty" validate:"omitempty,oneof=free pro enterprise"`
	MaxUsers         *int    `json:"maxUsers,omitempty"         validate:"omitempty,min=1"`
	MaxProjects      *int    `json:"maxProjects,omitempty"      validate:"omitempty,min=1"`
}

// Fields lists every field present in the request, restricted or not.
func (r UpdateTenantRequest) Fields() []string {
	var fields []string
	if r.Name != nil {
		fields = append(fields, policy.TenantFieldName)
	}
	if r.Status != nil {
		fields = append(fields, policy.TenantFieldStatus)
	}
	if r.SubscriptionPlan != nil {
		fields = append(fields, policy.TenantFieldPlan)
	}
	if r.MaxUsers != nil {
		fields = append(fields, policy.TenantFieldMaxUsers)
	}
	if r.MaxProjects != nil {
		fields = append(fields, policy.TenantFieldMaxProjects)
	}
	return fields
}

type TenantResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Subdomain        string    `json:"subdomain"`
	Status           string    `json:"status"`
	SubscriptionPlan string    `json:"subscriptionPlan"`
	MaxUsers         int       `json:"maxUsers"`
	MaxProjects      int       `json:"maxProjects"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type StatsResponse struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
	TotalTasks    int `json:"totalTasks"`
}

type TenantDetailResponse struct {
	TenantResponse
	Stats StatsResponse `json:"stats"`
}

type TenantSummaryResponse struct {
	TenantResponse
	TotalUsers    int `json:"totalUsers"`
	TotalProjects int `json:"totalProjects"`
}

type ListParams struct {
	Page             core.Page
	Status           string
	SubscriptionPlan string
}

func ToTenantResponse(t *Tenant) TenantResponse {
	return TenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		Subdomain:        t.Subdomain,
		Status:           t.Status,
		SubscriptionPlan: t.SubscriptionPlan,
		MaxUsers:         t.MaxUsers,
		MaxProjects:      t.MaxProjects,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func ToTenantDetailResponse(t *Tenant, s Stats) TenantDetailResponse {
	return TenantDetailResponse{
		TenantResponse: ToTenantResponse(t),
		Stats: StatsResponse{
			TotalUsers:    s.TotalUsers,
			TotalProjects: s.TotalProjects,
			TotalTasks:    s.TotalTasks,
		},
	}
}

func ToTenantSummaryList(rows []Summary) []TenantSummaryResponse {
	out := make([]TenantSummaryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, TenantSummaryResponse{
			TenantResponse: ToTenantResponse(&rows[i].Tenant),
			TotalUsers:     rows[i].TotalUsers,
			TotalProjects:  rows[i].TotalProjects,
		})
	}
	return out
}
