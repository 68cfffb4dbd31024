// AngelaMos | 2026
// authorize.go

package policy

import (
	"slices"
)

var superAdminTenantFields = []string{
	TenantFieldStatus,
	TenantFieldPlan,
	TenantFieldMaxUsers,
	TenantFieldMaxProjects,
}

var adminUserFields = []string{
	UserFieldRole,
	UserFieldIsActive,
}

// Authorize decides whether p may perform a. It performs no I/O; callers
// load the resource attributes first.
func Authorize(p Principal, a Action) Decision {
	switch act := a.(type) {
	case ReadTenant:
		return sameTenant(p, act.TenantID)

	case UpdateTenant:
		if d := sameTenant(p, act.TenantID); !d.Allowed {
			return d
		}
		if !p.IsSuperAdmin() && containsAny(act.Fields, superAdminTenantFields) {
			return Deny(FieldForbidden)
		}
		return Allow()

	case ListTenants:
		if p.IsSuperAdmin() {
			return Allow()
		}
		return Deny(RoleRequired)

	case CreateUser:
		return authorizeCreateUser(p, act)

	case ReadUser:
		return sameTenant(p, act.Target.TenantID)

	case ListUsers:
		return sameTenant(p, act.TenantID)

	case UpdateUser:
		return authorizeUpdateUser(p, act)

	case DeleteUser:
		return authorizeDeleteUser(p, act)

	case CreateProject:
		return sameTenant(p, act.TenantID)

	case ReadProject:
		return sameTenant(p, act.Project.TenantID)

	case UpdateProject:
		return projectOwner(p, act.Project)

	case DeleteProject:
		return projectOwner(p, act.Project)

	case CreateTask:
		if d := sameTenant(p, act.Project.TenantID); !d.Allowed {
			return d
		}
		return assigneeIn(act.Assignee, act.Project.TenantID)

	case ReadTask:
		return sameTenant(p, act.Task.TenantID)

	case UpdateTask:
		if d := sameTenant(p, act.Task.TenantID); !d.Allowed {
			return d
		}
		return assigneeIn(act.Assignee, act.Task.TenantID)

	case UpdateTaskStatus:
		return sameTenant(p, act.Task.TenantID)

	case DeleteTask:
		return sameTenant(p, act.Task.TenantID)
	}

	return Deny(RoleRequired)
}

func authorizeCreateUser(p Principal, act CreateUser) Decision {
	if p.IsSuperAdmin() {
		return Allow()
	}
	if d := sameTenant(p, act.TenantID); !d.Allowed {
		return d
	}
	if !p.IsTenantAdmin() {
		return Deny(RoleRequired)
	}
	if act.Role == RoleSuperAdmin {
		return Deny(FieldForbidden)
	}
	return Allow()
}

func authorizeUpdateUser(p Principal, act UpdateUser) Decision {
	if p.IsSuperAdmin() {
		return Allow()
	}
	if d := sameTenant(p, act.Target.TenantID); !d.Allowed {
		return d
	}
	if act.Role == RoleSuperAdmin {
		return Deny(FieldForbidden)
	}
	if p.IsTenantAdmin() {
		return Allow()
	}
	if p.UserID != act.Target.ID {
		return Deny(NotOwner)
	}
	if containsAny(act.Fields, adminUserFields) {
		return Deny(FieldForbidden)
	}
	return Allow()
}

func authorizeDeleteUser(p Principal, act DeleteUser) Decision {
	if p.UserID == act.Target.ID {
		return Deny(SelfDelete)
	}
	if p.IsSuperAdmin() {
		return Allow()
	}
	if d := sameTenant(p, act.Target.TenantID); !d.Allowed {
		return d
	}
	if !p.IsTenantAdmin() {
		return Deny(RoleRequired)
	}
	return Allow()
}

func projectOwner(p Principal, project ProjectRef) Decision {
	if d := sameTenant(p, project.TenantID); !d.Allowed {
		return d
	}
	if p.IsSuperAdmin() || p.IsTenantAdmin() {
		return Allow()
	}
	if project.CreatedBy != "" && project.CreatedBy == p.UserID {
		return Allow()
	}
	return Deny(NotOwner)
}

// assigneeIn holds for every role, super_admin included: a task may only
// point at a user of its own tenant.
func assigneeIn(assignee *UserRef, tenantID string) Decision {
	if assignee == nil {
		return Allow()
	}
	if assignee.TenantID == "" || assignee.TenantID != tenantID {
		return Deny(InvalidAssignee)
	}
	return Allow()
}

func sameTenant(p Principal, tenantID string) Decision {
	if p.MemberOf(tenantID) {
		return Allow()
	}
	return Deny(CrossTenant)
}

func containsAny(fields, restricted []string) bool {
	for _, f := range fields {
		if slices.Contains(restricted, f) {
			return true
		}
	}
	return false
}
