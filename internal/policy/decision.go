// AngelaMos | 2026
// decision.go

package policy

import (
	"fmt"
	"net/http"
)

type Reason string

const (
	CrossTenant     Reason = "cross_tenant"
	NotOwner        Reason = "not_owner"
	FieldForbidden  Reason = "field_forbidden"
	SelfDelete      Reason = "self_delete"
	InvalidAssignee Reason = "invalid_assignee"
	LimitReached    Reason = "limit_reached"
	RoleRequired    Reason = "role_required"
)

var publicMessages = map[Reason]string{
	CrossTenant:     "access to this resource is not permitted",
	NotOwner:        "only the creator or a tenant admin can modify this resource",
	FieldForbidden:  "you are not allowed to change one or more of the submitted fields",
	SelfDelete:      "you cannot delete your own account",
	InvalidAssignee: "assigned user does not belong to this tenant",
	LimitReached:    "subscription limit reached",
	RoleRequired:    "insufficient permissions",
}

type Decision struct {
	Allowed bool
	Reason  Reason
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Err is nil for an allowed decision and a *DeniedError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError maps every deny reason to 403. The reason stays
// server-side; clients only see the matching public message.
type DeniedError struct {
	Reason Reason
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("policy denied: %s", e.Reason)
}

func (e *DeniedError) HTTPStatus() int {
	return http.StatusForbidden
}

func (e *DeniedError) PublicMessage() string {
	if msg, ok := publicMessages[e.Reason]; ok {
		return msg
	}
	return "access denied"
}

func (e *DeniedError) PublicCode() string {
	return "FORBIDDEN"
}
