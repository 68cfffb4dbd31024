// AngelaMos | 2026
// entity.go

package tenant

import (
	"time"
)

type Tenant struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	Subdomain        string    `db:"subdomain"`
	Status           string    `db:"status"`
	SubscriptionPlan string    `db:"subscription_plan"`
	MaxUsers         int       `db:"max_users"`
	MaxProjects      int       `db:"max_projects"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// Stats are live counts, not stored columns.
type Stats struct {
	TotalUsers    int `db:"total_users"`
	TotalProjects int `db:"total_projects"`
	TotalTasks    int `db:"total_tasks"`
}

// Summary is a list row: the tenant plus its user and project counts.
type Summary struct {
	Tenant
	TotalUsers    int `db:"total_users"`
	TotalProjects int `db:"total_projects"`
}

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)
