// AngelaMos | 2026
// repository.go

package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/usha3107/multi-tenant-saas/internal/core"
)

// Repository appends entries to the audit_logs table.
type Repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Emit(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_logs
			(id, tenant_id, user_id, action, entity_type, entity_id, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New().String(),
		nullable(entry.TenantID),
		nullable(entry.UserID),
		string(entry.Action),
		entry.EntityType,
		nullable(entry.EntityID),
		nullable(entry.IPAddress),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NewEmitter builds the emitter selected by the audit.sink setting.
func NewEmitter(sink string, db core.DBTX, logger *slog.Logger) Emitter {
	switch sink {
	case "log":
		return LogEmitter{Logger: logger}
	case "both":
		return Multi{NewRepository(db), LogEmitter{Logger: logger}}
	case "none":
		return Nop{}
	default:
		return NewRepository(db)
	}
}
