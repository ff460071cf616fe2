package implementations

import (
	"context"
	"fmt"

	"github.com/mamgad/DVBLab/internal/domain"
)

type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) CreateLoginAttempt(ctx context.Context, attempt domain.LoginAttempt) error {
	query := r.db.Rebind(`
INSERT INTO login_attempts (user_id, username, ip_address, user_agent, success, created_at)
VALUES (?, ?, ?, ?, ?, ?)`)

	if _, err := r.db.ExecContext(
		ctx,
		query,
		attempt.UserID,
		attempt.Username,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.Success,
		toMillis(attempt.CreatedAt),
	); err != nil {
		return fmt.Errorf("create login attempt: %w", err)
	}

	return nil
}

func (r *AuditRepository) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	query := r.db.Rebind(`
INSERT INTO audit_logs (user_id, action, details, ip_address, created_at)
VALUES (?, ?, ?, ?, ?)`)

	var details *string
	if entry.Details != "" {
		details = &entry.Details
	}

	if _, err := r.db.ExecContext(
		ctx,
		query,
		entry.UserID,
		entry.Action,
		details,
		entry.IPAddress,
		toMillis(entry.CreatedAt),
	); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}

	return nil
}
