// AngelaMos | 2026
// enforce.go

package policy

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

type Recorder interface {
	RecordDecision(action string, d Decision)
}

// Enforcer runs Authorize and reports each decision to metrics, the
// debug log and the active span.
type Enforcer struct {
	recorder Recorder
	logger   *slog.Logger
}

func NewEnforcer(recorder Recorder, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{recorder: recorder, logger: logger}
}

func (e *Enforcer) Check(ctx context.Context, p Principal, a Action) error {
	d := Authorize(p, a)
	e.Observe(ctx, p, a.Name(), d)
	return d.Err()
}

// Observe reports a decision made outside Authorize, such as a quota
// check.
func (e *Enforcer) Observe(
	ctx context.Context,
	p Principal,
	action string,
	d Decision,
) {
	if e == nil {
		return
	}

	if e.recorder != nil {
		e.recorder.RecordDecision(action, d)
	}

	outcome := "allow"
	if !d.Allowed {
		outcome = "deny"
	}

	e.logger.DebugContext(ctx, "authorization decision",
		"action", action,
		"decision", outcome,
		"reason", string(d.Reason),
		"user_id", p.UserID,
		"tenant_id", p.TenantID,
		"role", string(p.Role),
	)

	core.AddSpanEvent(ctx, "authz.decision",
		attribute.String("authz.action", action),
		attribute.String("authz.decision", outcome),
		attribute.String("authz.reason", string(d.Reason)),
	)
}
