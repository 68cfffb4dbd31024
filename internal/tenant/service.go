// AngelaMos | 2026
// service.go

package tenant

import (
	"context"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

type Service struct {
	db       core.Transactor
	repo     func(core.DBTX) Repository
	enforcer *policy.Enforcer
	audit    audit.Emitter
}

func NewService(
	db core.Transactor,
	repo func(core.DBTX) Repository,
	enforcer *policy.Enforcer,
	emitter audit.Emitter,
) *Service {
	return &Service{db: db, repo: repo, enforcer: enforcer, audit: emitter}
}

func (s *Service) Get(
	ctx context.Context,
	p policy.Principal,
	id string,
) (*Tenant, Stats, error) {
	if err := s.enforcer.Check(ctx, p, policy.ReadTenant{TenantID: id}); err != nil {
		return nil, Stats{}, err
	}

	repo := s.repo(s.db.Conn())
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, Stats{}, err
	}

	stats, err := repo.Stats(ctx, id)
	if err != nil {
		return nil, Stats{}, err
	}

	return t, stats, nil
}

// Update rejects the whole request when any restricted field is present;
// nothing is written in that case.
func (s *Service) Update(
	ctx context.Context,
	p policy.Principal,
	id string,
	req UpdateTenantRequest,
) (*Tenant, error) {
	action := policy.UpdateTenant{TenantID: id, Fields: req.Fields()}
	if err := s.enforcer.Check(ctx, p, action); err != nil {
		return nil, err
	}

	t, err := s.repo(s.db.Conn()).Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   t.ID,
		UserID:     p.UserID,
		Action:     audit.ActionUpdateTenant,
		EntityType: audit.EntityTenant,
		EntityID:   t.ID,
	})

	return t, nil
}

func (s *Service) List(
	ctx context.Context,
	p policy.Principal,
	params ListParams,
) ([]Summary, int, error) {
	if err := s.enforcer.Check(ctx, p, policy.ListTenants{}); err != nil {
		return nil, 0, err
	}

	return s.repo(s.db.Conn()).List(ctx, params)
}
