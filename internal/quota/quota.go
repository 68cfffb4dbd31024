// AngelaMos | 2026
// quota.go

package quota

import (
	"context"
	"fmt"

	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type Kind string

const (
	KindUser    Kind = "user"
	KindProject Kind = "project"
)

type Limits struct {
	MaxUsers    int `db:"max_users"`
	MaxProjects int `db:"max_projects"`
}

// Store reads limits and counts. LimitsForUpdate must lock the tenant row
// until the surrounding transaction ends.
type Store interface {
	LimitsForUpdate(ctx context.Context, tenantID string) (Limits, error)
	CountUsers(ctx context.Context, tenantID string) (int, error)
	CountProjects(ctx context.Context, tenantID string) (int, error)
}

// Check denies with LimitReached once count has reached the limit.
func Check(limits Limits, count int, kind Kind) policy.Decision {
	limit := limits.MaxProjects
	if kind == KindUser {
		limit = limits.MaxUsers
	}
	if count >= limit {
		return policy.Deny(policy.LimitReached)
	}
	return policy.Allow()
}

type Enforcer struct {
	policy *policy.Enforcer
}

func NewEnforcer(pe *policy.Enforcer) *Enforcer {
	return &Enforcer{policy: pe}
}

// CheckAndReserve must run on the same transaction as the insert it
// guards. The row lock taken by LimitsForUpdate serializes concurrent
// creations for one tenant, so the limit cannot be overshot.
func (e *Enforcer) CheckAndReserve(
	ctx context.Context,
	store Store,
	p policy.Principal,
	tenantID string,
	kind Kind,
) error {
	limits, err := store.LimitsForUpdate(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("quota %s: %w", kind, err)
	}

	var count int
	switch kind {
	case KindUser:
		count, err = store.CountUsers(ctx, tenantID)
	case KindProject:
		count, err = store.CountProjects(ctx, tenantID)
	default:
		return fmt.Errorf("quota: unknown kind %q", kind)
	}
	if err != nil {
		return fmt.Errorf("quota %s: %w", kind, err)
	}

	d := Check(limits, count, kind)
	if e != nil {
		e.policy.Observe(ctx, p, "quota_"+string(kind), d)
	}
	return d.Err()
}
