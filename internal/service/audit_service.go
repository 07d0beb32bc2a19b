package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type auditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, q dto.AuditLogQuery) ([]models.AuditLog, error)
}

// AuditService appends to and reads the audit trail. Writers treat
// Record as best effort; a failed append never fails the action that
// produced it.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record appends one audit entry. Callers decide whether a failure is
// fatal; the domain services swallow it.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil || entry.Action == "" {
		return appErrors.Clone(appErrors.ErrValidation, "audit action is required")
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record audit log")
	}
	return nil
}

// Logs lists audit entries newest first.
func (s *AuditService) Logs(ctx context.Context, q dto.AuditLogQuery) ([]models.AuditLog, error) {
	entries, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	if entries == nil {
		entries = []models.AuditLog{}
	}
	return entries, nil
}
