package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mamgad/DVBLab/internal/domain"
	"github.com/mamgad/DVBLab/internal/logger"
)

// AuditService appends security-relevant events. Both recorders swallow
// storage errors: an audit insert failing must never fail the operation it
// describes.
type AuditService struct {
	auditRepo domain.AuditRepository
}

func NewAuditService(auditRepo domain.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

func (s *AuditService) RecordLoginAttempt(ctx context.Context, username string, userID *int64, ip string, userAgent *string, success bool, now time.Time) {
	attempt := domain.LoginAttempt{
		UserID:    userID,
		Username:  username,
		IPAddress: ip,
		UserAgent: userAgent,
		Success:   success,
		CreatedAt: now,
	}

	if err := s.auditRepo.CreateLoginAttempt(ctx, attempt); err != nil {
		logger.Error("record login attempt failed", err, logger.Fields{
			"username": username,
			"success":  success,
		})
	}
}

func (s *AuditService) Record(ctx context.Context, userID *int64, action string, details map[string]any, ip string, now time.Time) {
	encoded := ""
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			logger.Error("encode audit details failed", err, logger.Fields{"action": action})
		} else {
			encoded = string(raw)
		}
	}

	entry := domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   encoded,
		IPAddress: ip,
		CreatedAt: now,
	}

	if err := s.auditRepo.CreateAuditLog(ctx, entry); err != nil {
		logger.Error("record audit log failed", err, logger.Fields{"action": action})
	}
}
