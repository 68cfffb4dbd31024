// AngelaMos | 2026
// dto.go

package task

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

const dueDateLayout = "2006-01-02"

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(b, &n.Value)
}

type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assignedTo"  validate:"omitempty,min=1"`
	DueDate     *string `json:"dueDate"     validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskRequest sends assignedTo or dueDate as null to clear them.
type UpdateTaskRequest struct {
	Title       *string          `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *string          `json:"status,omitempty"      validate:"omitempty,oneof=todo in_progress completed"`
	Priority    *string          `json:"priority,omitempty"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  Nullable[string] `json:"assignedTo"`
	DueDate     Nullable[string] `json:"dueDate"`
}

// NewAssignee returns the user id being assigned, or "" when the request
// leaves the assignee alone or clears it.
func (r UpdateTaskRequest) NewAssignee() string {
	if !r.AssignedTo.Set || r.AssignedTo.Null {
		return ""
	}
	return r.AssignedTo.Value
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress completed"`
}

func parseDueDate(s string) (*time.Time, error) {
	d, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return nil, core.InvalidInputError("dueDate must be YYYY-MM-DD")
	}
	return &d, nil
}

type AssigneeResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

type TaskResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projectId"`
	ProjectName string            `json:"projectName,omitempty"`
	TenantID    string            `json:"tenantId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	AssignedTo  *AssigneeResponse `json:"assignedTo"`
	DueDate     *string           `json:"dueDate"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type ListParams struct {
	Page       core.Page
	Status     string
	Priority   string
	AssignedTo string
	Search     string
}

const defaultListLimit = 50

func ToTaskResponse(t *Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		TenantID:    t.TenantID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		resp.AssignedTo = &AssigneeResponse{ID: *t.AssignedTo}
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dueDateLayout)
		resp.DueDate = &d
	}
	return resp
}

func ToDetailResponse(d *Detail) TaskResponse {
	resp := ToTaskResponse(&d.Task)
	resp.ProjectName = d.ProjectName
	if resp.AssignedTo != nil {
		if d.AssigneeName != nil {
			resp.AssignedTo.FullName = *d.AssigneeName
		}
		if d.AssigneeEmail != nil {
			resp.AssignedTo.Email = *d.AssigneeEmail
		}
	}
	return resp
}

func ToDetailResponseList(rows []Detail) []TaskResponse {
	out := make([]TaskResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToDetailResponse(&rows[i]))
	}
	return out
}
