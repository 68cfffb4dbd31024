// AngelaMos | 2026
// entity.go

package project

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

// Project.CreatedBy is a lookup reference only; it becomes nil when the
// creator is deleted and the project stays.
type Project struct {
	ID          string    `db:"id"`
	TenantID    string    `db:"tenant_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Status      string    `db:"status"`
	CreatedBy   *string   `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p *Project) Ref() policy.ProjectRef {
	ref := policy.ProjectRef{ID: p.ID, TenantID: p.TenantID}
	if p.CreatedBy != nil {
		ref.CreatedBy = *p.CreatedBy
	}
	return ref
}

// Detail is a project joined with its creator and task counters.
type Detail struct {
	Project
	CreatorName        *string `db:"creator_name"`
	TaskCount          int     `db:"task_count"`
	CompletedTaskCount int     `db:"completed_task_count"`
}

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)
