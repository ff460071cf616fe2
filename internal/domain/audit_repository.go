package domain

import "context"

type AuditRepository interface {
	CreateLoginAttempt(ctx context.Context, attempt LoginAttempt) error
	CreateAuditLog(ctx context.Context, entry AuditLog) error
}
