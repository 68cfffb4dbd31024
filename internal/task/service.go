// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/usha3107/multi-tenant-saas/internal/audit"
	"github.com/usha3107/multi-tenant-saas/internal/core"
	"github.com/usha3107/multi-tenant-saas/internal/policy"
)

// ProjectLookup resolves the policy attributes of a project.
type ProjectLookup interface {
	Ref(ctx context.Context, id string) (policy.ProjectRef, error)
}

// UserLookup resolves a prospective assignee. Unknown ids come back with
// an empty TenantID rather than an error.
type UserLookup interface {
	Ref(ctx context.Context, id string) (policy.UserRef, error)
}

type Service struct {
	db       core.Transactor
	repo     func(core.DBTX) Repository
	projects ProjectLookup
	users    UserLookup
	enforcer *policy.Enforcer
	audit    audit.Emitter
}

func NewService(
	db core.Transactor,
	repo func(core.DBTX) Repository,
	projects ProjectLookup,
	users UserLookup,
	enforcer *policy.Enforcer,
	emitter audit.Emitter,
) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		projects: projects,
		users:    users,
		enforcer: enforcer,
		audit:    emitter,
	}
}

func (s *Service) project(ctx context.Context, id string) (policy.ProjectRef, error) {
	ref, err := s.projects.Ref(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return policy.ProjectRef{}, core.NotFoundError("project")
	}
	return ref, err
}

func (s *Service) assignee(ctx context.Context, id string) (*policy.UserRef, error) {
	if id == "" {
		return nil, nil
	}
	ref, err := s.users.Ref(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (s *Service) Create(
	ctx context.Context,
	p policy.Principal,
	projectID string,
	req CreateTaskRequest,
) (*Task, error) {
	proj, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var assignedTo string
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}
	who, err := s.assignee(ctx, assignedTo)
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.CreateTask{Project: proj, Assignee: who}); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	t := &Task{
		ID:          uuid.New().String(),
		ProjectID:   proj.ID,
		TenantID:    proj.TenantID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      StatusTodo,
		Priority:    priority,
	}
	if who != nil {
		t.AssignedTo = &who.ID
	}
	if req.DueDate != nil {
		if t.DueDate, err = parseDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	if err := s.repo(s.db.Conn()).Create(ctx, t); err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   t.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionCreateTask,
		EntityType: audit.EntityTask,
		EntityID:   t.ID,
	})

	return t, nil
}

func (s *Service) ListByProject(
	ctx context.Context,
	p policy.Principal,
	projectID string,
	params ListParams,
) ([]Detail, int, error) {
	proj, err := s.project(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}

	if err := s.enforcer.Check(ctx, p, policy.ReadProject{Project: proj}); err != nil {
		return nil, 0, err
	}

	return s.repo(s.db.Conn()).ListByProject(ctx, proj.ID, p.TenantScope(), params)
}

// ListMine returns the tasks assigned to the caller.
func (s *Service) ListMine(
	ctx context.Context,
	p policy.Principal,
	params ListParams,
) ([]Detail, int, error) {
	return s.repo(s.db.Conn()).ListAssigned(ctx, p.UserID, p.TenantScope(), params)
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

	if err := s.enforcer.Check(ctx, p, policy.ReadTask{Task: d.Ref()}); err != nil {
		return nil, err
	}

	return d, nil
}

// explainMiss turns a scoped miss on a task that lives in another tenant
// into the policy denial, and leaves a genuine miss alone.
func (s *Service) explainMiss(
	ctx context.Context,
	repo Repository,
	p policy.Principal,
	id string,
	miss error,
) error {
	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Check(ctx, p, policy.ReadTask{Task: existing.Ref()}); err != nil {
		return err
	}
	return miss
}

// UpdateStatus allows any transition between the three statuses.
func (s *Service) UpdateStatus(
	ctx context.Context,
	p policy.Principal,
	id string,
	status string,
) (*Task, error) {
	repo := s.repo(s.db.Conn())

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.UpdateTaskStatus{Task: existing.Ref()}); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, id, p.TenantScope(), Changes{Status: &status})
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   updated.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionUpdateTaskStatus,
		EntityType: audit.EntityTask,
		EntityID:   updated.ID,
	})

	return updated, nil
}

func (s *Service) Update(
	ctx context.Context,
	p policy.Principal,
	id string,
	req UpdateTaskRequest,
) (*Task, error) {
	repo := s.repo(s.db.Conn())

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	who, err := s.assignee(ctx, req.NewAssignee())
	if err != nil {
		return nil, err
	}

	if err := s.enforcer.Check(ctx, p, policy.UpdateTask{Task: existing.Ref(), Assignee: who}); err != nil {
		return nil, err
	}

	changes := Changes{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		ClearAssignee: req.AssignedTo.Set && req.AssignedTo.Null,
		ClearDueDate:  req.DueDate.Set && req.DueDate.Null,
	}
	if who != nil {
		changes.AssignedTo = &who.ID
	}
	if req.DueDate.Set && !req.DueDate.Null {
		if changes.DueDate, err = parseDueDate(req.DueDate.Value); err != nil {
			return nil, err
		}
	}

	updated, err := repo.Update(ctx, id, p.TenantScope(), changes)
	if err != nil {
		return nil, err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   updated.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionUpdateTask,
		EntityType: audit.EntityTask,
		EntityID:   updated.ID,
	})

	return updated, nil
}

func (s *Service) Delete(
	ctx context.Context,
	p policy.Principal,
	id string,
) error {
	repo := s.repo(s.db.Conn())

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.enforcer.Check(ctx, p, policy.DeleteTask{Task: existing.Ref()}); err != nil {
		return err
	}

	if err := repo.Delete(ctx, id, p.TenantScope()); err != nil {
		return err
	}

	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   existing.TenantID,
		UserID:     p.UserID,
		Action:     audit.ActionDeleteTask,
		EntityType: audit.EntityTask,
		EntityID:   id,
	})

	return nil
}
