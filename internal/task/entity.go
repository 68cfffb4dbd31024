// AngelaMos | 2026
// entity.go

package task

import (
	"time"

	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

// Task.TenantID is copied from the parent project when the task is
// created and is never written again. Authorization reads it directly.
type Task struct {
	ID          string     `db:"id"`
	ProjectID   string     `db:"project_id"`
	TenantID    string     `db:"tenant_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	AssignedTo  *string    `db:"assigned_to"`
	DueDate     *time.Time `db:"due_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (t *Task) Ref() policy.TaskRef {
	return policy.TaskRef{ID: t.ID, TenantID: t.TenantID}
}

// Detail adds the assignee and project names used by list views.
type Detail struct {
	Task
	AssigneeName  *string `db:"assignee_name"`
	AssigneeEmail *string `db:"assignee_email"`
	ProjectName   string  `db:"project_name"`
}

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)
