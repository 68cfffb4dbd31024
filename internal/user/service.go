// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
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

// Create adds a user to tenantID. The quota check and the insert share a
// transaction so the tenant row lock covers both.
func (s *Service) Create(
	ctx context.Context,
	p policy.Principal,
	tenantID string,
	req CreateUserRequest,
) (*User, error) {
	role := policy.Role(req.Role)
	if role == "" {
		role = policy.RoleUser
	}

	if err := s.enforcer.Check(ctx, p, policy.CreateUser{TenantID: tenantID, Role: role}); err != nil {
		return nil, err
	}

	if role == policy.RoleSuperAdmin {
		return nil, core.InvalidInputError("super_admin accounts cannot belong to a tenant")
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		TenantID:     &tenantID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role.String(),
		IsActive:     true,
	}

	err = s.db.WithTx(ctx, func(tx core.DBTX) error {
		if err := s.quota.CheckAndReserve(ctx, s.store(tx), p, tenantID, quota.KindUser); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("tenant")
			}
			return err
		}
		return s.repo(tx).Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   tenantID,
		UserID:     p.UserID,
		Action:     audit.ActionCreateUser,
		EntityType: audit.EntityUser,
		EntityID:   u.ID,
	})

	return u, nil
}

func (s *Service) List(
	ctx context.Context,
	p policy.Principal,
	tenantID string,
	params ListParams,
) ([]User, int, error) {
	if err := s.enforcer.Check(ctx, p, policy.ListUsers{TenantID: tenantID}); err != nil {
		return nil, 0, err
	}

	return s.repo(s.db.Conn()).List(ctx, tenantID, params)
}

func (s *Service) Get(
	ctx context.Context,
	p policy.Principal,
	id string,
) (*User, error) {
	repo := s.repo(s.db.Conn())

	u, err := repo.GetInScope(ctx, id, p.TenantScope())
	if errors.Is(err, core.ErrNotFound) && p.TenantScope() != nil {
		// Only decides between a denial and a miss; the row is not returned.
		other, lookupErr := repo.GetByID(ctx, id)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if denied := s.enforcer.Check(ctx, p, policy.ReadUser{Target: other.Ref()}); denied != nil {
			return nil, denied
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.ReadUser{Target: u.Ref()}); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *Service) Update(
	ctx context.Context,
	p policy.Principal,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	repo := s.repo(s.db.Conn())

	target, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	action := policy.UpdateUser{
		Target: target.Ref(),
		Fields: req.Fields(),
		Role:   req.RequestedRole(),
	}
	if err := s.enforcer.Check(ctx, p, action); err != nil {
		return nil, err
	}

	if action.Role == policy.RoleSuperAdmin && target.TenantID != nil {
		return nil, core.InvalidInputError("super_admin accounts cannot belong to a tenant")
	}

	updated, err := repo.Update(ctx, id, p.TenantScope(), req)
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   updated.Tenant(),
		UserID:     p.UserID,
		Action:     audit.ActionUpdateUser,
		EntityType: audit.EntityUser,
		EntityID:   updated.ID,
	})

	return updated, nil
}

// Delete unassigns the user's tasks and removes the user in one
// transaction. Projects the user created are left in place.
func (s *Service) Delete(
	ctx context.Context,
	p policy.Principal,
	id string,
) error {
	target, err := s.repo(s.db.Conn()).GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.enforcer.Check(ctx, p, policy.DeleteUser{Target: target.Ref()}); err != nil {
		return err
	}

	err = s.db.WithTx(ctx, func(tx core.DBTX) error {
		repo := s.repo(tx)
		if _, err := repo.ClearTaskAssignments(ctx, id); err != nil {
			return err
		}
		return repo.Delete(ctx, id, p.TenantScope())
	})
	if err != nil {
		return err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   target.Tenant(),
		UserID:     p.UserID,
		Action:     audit.ActionDeleteUser,
		EntityType: audit.EntityUser,
		EntityID:   id,
	})

	return nil
}

// Ref resolves a user id for assignee checks. An unknown id yields a ref
// with an empty TenantID, which policy treats as an invalid assignee.
func (s *Service) Ref(ctx context.Context, id string) (policy.UserRef, error) {
	u, err := s.repo(s.db.Conn()).GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return policy.UserRef{ID: id}, nil
	}
	if err != nil {
		return policy.UserRef{}, err
	}
	return u.Ref(), nil
}
