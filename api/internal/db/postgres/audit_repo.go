// api/internal/db/postgres/audit_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

// SecurityEventRepo stores auth gate rejections. Events are append-only.
type SecurityEventRepo struct {
	db *sqlx.DB
}

var _ domain.SecurityEventRepository = (*SecurityEventRepo)(nil)

func NewSecurityEventRepo(db *sqlx.DB) *SecurityEventRepo {
	return &SecurityEventRepo{db: db}
}

// Record persists one event. The caller supplies id and timestamp.
func (r *SecurityEventRepo) Record(ctx context.Context, event *domain.SecurityEvent) error {
	query := `
		INSERT INTO security_events (id, kind, reason, subject_id, method, path, remote_addr, request_id, created_at)
		VALUES (:id, :kind, :reason, :subject_id, :method, :path, :remote_addr, :request_id, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("failed to record security event: %w", err)
	}
	return nil
}

// List returns events newest first.
func (r *SecurityEventRepo) List(ctx context.Context, limit, offset int) ([]domain.SecurityEvent, error) {
	query := `
		SELECT id, kind, reason, subject_id, method, path, remote_addr, request_id, created_at
		FROM security_events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	var events []domain.SecurityEvent
	if err := r.db.SelectContext(ctx, &events, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list security events: %w", err)
	}
	return events, nil
}

// DeleteBefore enforces the retention window.
func (r *SecurityEventRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM security_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune security events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune security events: %w", err)
	}
	return n, nil
}
