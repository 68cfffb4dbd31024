// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
	"github.com/usha3107/multi-tenant-saas/internal/quota"
)

type Service struct {
	db       core.Transactor
	repo     func(core.DBTX) Repository
	store    func(core.DBTX) quota.Store
	quota    *quota.Enforcer
	enforcer *policy.Enforcer
	audit    audit.Emitter
}

func NewService(
	db core.Transactor,
	repo func(core.DBTX) Repository,
	store func(core.DBTX) quota.Store,
	quotaEnforcer *quota.Enforcer,
	enforcer *policy.Enforcer,
	emitter audit.Emitter,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		store:    store,
		quota:    quotaEnforcer,
		enforcer: enforcer,
		audit:    emitter,
	}
}

// Create places the project in the caller's tenant. A super_admin has no
// tenant of its own and must name one.
func (s *Service) Create(
	ctx context.Context,
	p policy.Principal,
	tenantID string,
	req CreateProjectRequest,
) (*Project, error) {
	if !p.IsSuperAdmin() || tenantID == "" {
		tenantID = p.TenantID
	}
	if tenantID == "" {
		return nil, core.InvalidInputError("tenantId is required")
	}

	if err := s.enforcer.Check(ctx, p, policy.CreateProject{TenantID: tenantID}); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}

	creator := p.UserID
	proj := &Project{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Status:      status,
		CreatedBy:   &creator,
	}

	err := s.db.WithTx(ctx, func(tx core.DBTX) error {
		if err := s.quota.CheckAndReserve(ctx, s.store(tx), p, tenantID, quota.KindProject); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("tenant")
			}
			return err
		}
		return s.repo(tx).Create(ctx, proj)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   tenantID,
		UserID:     p.UserID,
		Action:     audit.ActionCreateProject,
		EntityType: audit.EntityProject,
		EntityID:   proj.ID,
	})

	return proj, nil
}

// List is scoped to the caller's tenant. A super_admin sees every tenant
// unless params.TenantID narrows it.
func (s *Service) List(
	ctx context.Context,
	p policy.Principal,
	params ListParams,
) ([]Detail, int, error) {
	if !p.IsSuperAdmin() {
		target := p.TenantID
		if params.TenantID != nil {
			target = *params.TenantID
		}
		if err := s.enforcer.Check(ctx, p, policy.ReadTenant{TenantID: target}); err != nil {
			return nil, 0, err
		}
		params.TenantID = p.TenantScope()
	}

	return s.repo(s.db.Conn()).List(ctx, params)
}

func (s *Service) Get(
	ctx context.Context,
	p policy.Principal,
	id string,
) (*Detail, error) {
	repo := s.repo(s.db.Conn())

	d, err := repo.GetDetail(ctx, id, p.TenantScope())
	if errors.Is(err, core.ErrNotFound) && p.TenantScope() != nil {
		return nil, s.explainMiss(ctx, repo, p, id, err)
	}
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.ReadProject{Project: d.Ref()}); err != nil {
		return nil, err
	}

	return d, nil
}

// explainMiss reports a project outside the caller's tenant as a policy
// denial and a project that does not exist at all as miss.
func (s *Service) explainMiss(
	ctx context.Context,
	repo Repository,
	p policy.Principal,
	id string,
	miss error,
) error {
	proj, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Check(ctx, p, policy.ReadProject{Project: proj.Ref()}); err != nil {
		return err
	}
	return miss
}

// Ref loads the attributes policy needs for a project, for callers in
// other packages such as task creation.
func (s *Service) Ref(ctx context.Context, id string) (policy.ProjectRef, error) {
	proj, err := s.repo(s.db.Conn()).GetByID(ctx, id)
	if err != nil {
		return policy.ProjectRef{}, err
	}
	return proj.Ref(), nil
}

func (s *Service) Update(
	ctx context.Context,
	p policy.Principal,
	id string,
	req UpdateProjectRequest,
) (*Project, error) {
	repo := s.repo(s.db.Conn())

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.UpdateProject{Project: existing.Ref()}); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, id, p.TenantScope(), req)
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   updated.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionUpdateProject,
		EntityType: audit.EntityProject,
		EntityID:   updated.ID,
	})

	return updated, nil
}

// Delete removes the project and its tasks together.
func (s *Service) Delete(
	ctx context.Context,
	p policy.Principal,
	id string,
) error {
	existing, err := s.repo(s.db.Conn()).GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.enforcer.Check(ctx, p, policy.DeleteProject{Project: existing.Ref()}); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx core.DBTX) error {
		repo := s.repo(tx)
		if _, err := repo.DeleteTasks(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id, p.TenantScope())
	})
	if err != nil {
		return err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   existing.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionDeleteProject,
		EntityType: audit.EntityProject,
		EntityID:   id,
	})

	return nil
}
