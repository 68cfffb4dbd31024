// AngelaMos | 2026
// action.go

package policy

// Action is a closed set; only types in this file implement it.
type Action interface {
	Name() string
	action()
}

const (
	TenantFieldName        = "name"
	TenantFieldStatus      = "status"
	TenantFieldPlan        = "subscriptionPlan"
	TenantFieldMaxUsers    = "maxUsers"
	TenantFieldMaxProjects = "maxProjects"

	UserFieldFullName = "fullName"
	UserFieldRole     = "role"
	UserFieldIsActive = "isActive"
)

type ReadTenant struct {
	TenantID string
}

// UpdateTenant carries the names of every field present in the request,
// so restricted fields are caught before anything is written.
type UpdateTenant struct {
	TenantID string
	Fields   []string
}

type ListTenants struct{}

type CreateUser struct {
	TenantID string
	Role     Role
}

type ReadUser struct {
	Target UserRef
}

type ListUsers struct {
	TenantID string
}

// UpdateUser.Role is the requested new role, empty when unchanged.
type UpdateUser struct {
	Target UserRef
	Fields []string
	Role   Role
}

type DeleteUser struct {
	Target UserRef
}

type CreateProject struct {
	TenantID string
}

type ReadProject struct {
	Project ProjectRef
}

type UpdateProject struct {
	Project ProjectRef
}

type DeleteProject struct {
	Project ProjectRef
}

// CreateTask.Assignee is nil when no assignee was requested. A requested
// assignee that does not exist is passed with an empty TenantID.
type CreateTask struct {
	Project  ProjectRef
	Assignee *UserRef
}

type ReadTask struct {
	Task TaskRef
}

type UpdateTask struct {
	Task     TaskRef
	Assignee *UserRef
}

type UpdateTaskStatus struct {
	Task TaskRef
}

type DeleteTask struct {
	Task TaskRef
}

func (ReadTenant) Name() string       { return "read_tenant" }
func (UpdateTenant) Name() string     { return "update_tenant" }
func (ListTenants) Name() string      { return "list_tenants" }
func (CreateUser) Name() string       { return "create_user" }
func (ReadUser) Name() string         { return "read_user" }
func (ListUsers) Name() string        { return "list_users" }
func (UpdateUser) Name() string       { return "update_user" }
func (DeleteUser) Name() string       { return "delete_user" }
func (CreateProject) Name() string    { return "create_project" }
func (ReadProject) Name() string      { return "read_project" }
func (UpdateProject) Name() string    { return "update_project" }
func (DeleteProject) Name() string    { return "delete_project" }
func (CreateTask) Name() string       { return "create_task" }
func (ReadTask) Name() string         { return "read_task" }
func (UpdateTask) Name() string       { return "update_task" }
func (UpdateTaskStatus) Name() string { return "update_task_status" }
func (DeleteTask) Name() string       { return "delete_task" }

func (ReadTenant) action()       {}
func (UpdateTenant) action()     {}
func (ListTenants) action()      {}
func (CreateUser) action()       {}
func (ReadUser) action()         {}
func (ListUsers) action()        {}
func (UpdateUser) action()       {}
func (DeleteUser) action()       {}
func (CreateProject) action()    {}
func (ReadProject) action()      {}
func (UpdateProject) action()    {}
func (DeleteProject) action()    {}
func (CreateTask) action()       {}
func (ReadTask) action()         {}
func (UpdateTask) action()       {}
func (UpdateTaskStatus) action() {}
func (DeleteTask) action()       {}
