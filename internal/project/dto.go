// AngelaMos | 2026
// dto.go

package project

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type CreateProjectRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=5000"`
	Status      string `json:"status"      validate:"omitempty,oneof=active completed archived"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=active completed archived"`
}

type CreatorResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type ProjectResponse struct {
	ID                 string           `json:"id"`
	TenantID           string           `json:"tenantId"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Status             string           `json:"status"`
	CreatedBy          *CreatorResponse `json:"createdBy"`
	TaskCount          int              `json:"taskCount"`
	CompletedTaskCount int              `json:"completedTaskCount"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

type ListParams struct {
	Page     core.Page
	TenantID *string
	Status   string
	Search   string
}

const defaultListLimit = 20

func ToProjectResponse(p *Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CreatedBy != nil {
		resp.CreatedBy = &CreatorResponse{ID: *p.CreatedBy}
	}
	return resp
}

func ToDetailResponse(d *Detail) ProjectResponse {
	resp := ToProjectResponse(&d.Project)
	if resp.CreatedBy != nil && d.CreatorName != nil {
		resp.CreatedBy.FullName = *d.CreatorName
	}
	resp.TaskCount = d.TaskCount
	resp.CompletedTaskCount = d.CompletedTaskCount
	return resp
}

func ToDetailResponseList(rows []Detail) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToDetailResponse(&rows[i]))
	}
	return out
}
