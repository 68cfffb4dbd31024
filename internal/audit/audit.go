// AngelaMos | 2026
// audit.go

package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Action string

const (
	ActionRegisterTenant   Action = "REGISTER_TENANT"
	ActionUpdateTenant     Action = "UPDATE_TENANT"
	ActionCreateUser       Action = "CREATE_USER"
	ActionUpdateUser       Action = "UPDATE_USER"
	ActionDeleteUser       Action = "DELETE_USER"
	ActionCreateProject    Action = "CREATE_PROJECT"
	ActionUpdateProject    Action = "UPDATE_PROJECT"
	ActionDeleteProject    Action = "DELETE_PROJECT"
	ActionCreateTask       Action = "CREATE_TASK"
	ActionUpdateTask       Action = "UPDATE_TASK"
	ActionUpdateTaskStatus Action = "UPDATE_TASK_STATUS"
	ActionDeleteTask       Action = "DELETE_TASK"
)

const (
	EntityTenant  = "tenant"
	EntityUser    = "user"
	EntityProject = "project"
	EntityTask    = "task"
)

// Entry is one append-only audit record. Empty TenantID or UserID are
// stored as NULL.
type Entry struct {
	TenantID   string
	UserID     string
	Action     Action
	EntityType string
	EntityID   string
	IPAddress  string
	Timestamp  time.Time
}

type Emitter interface {
	Emit(ctx context.Context, entry Entry) error
}

type ipKey struct{}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipKey{}, ip)
}

func IPAddress(ctx context.Context) string {
	if ip, ok := ctx.Value(ipKey{}).(string); ok {
		return ip
	}
	return ""
}

// Record fills in the client IP and timestamp and emits the entry. It
// runs after the mutation has committed, so a failure is only logged.
func Record(ctx context.Context, emitter Emitter, entry Entry) {
	if emitter == nil {
		return
	}
	if entry.IPAddress == "" {
		entry.IPAddress = IPAddress(ctx)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := emitter.Emit(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "audit emit failed",
			"error", err,
			"action", string(entry.Action),
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
		)
	}
}

type Nop struct{}

func (Nop) Emit(context.Context, Entry) error { return nil }

// Multi fans out to every emitter and joins their errors.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, entry Entry) error {
	var errs []error
	for _, e := range m {
		if err := e.Emit(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogEmitter struct {
	Logger *slog.Logger
}

func (l LogEmitter) Emit(ctx context.Context, entry Entry) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "audit",
		"action", string(entry.Action),
		"tenant_id", entry.TenantID,
		"user_id", entry.UserID,
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"ip_address", entry.IPAddress,
		"timestamp", entry.Timestamp,
	)
	return nil
}
