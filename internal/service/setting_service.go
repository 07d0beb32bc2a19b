package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type settingStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// SettingService reads and mutates configuration entries. Every upsert
// leaves an audit entry carrying the previous value.
type SettingService struct {
	repo      settingStore
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingService constructs the service.
func NewSettingService(repo settingStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// Get returns a single setting.
func (s *SettingService) Get(ctx context.Context, key string) (*models.Setting, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch setting")
	}
	return setting, nil
}

// List returns every setting.
func (s *SettingService) List(ctx context.Context) ([]models.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	if settings == nil {
		settings = []models.Setting{}
	}
	return settings, nil
}

// Upsert creates or replaces a setting and records the old value in
// the audit trail.
func (s *SettingService) Upsert(ctx context.Context, req dto.UpsertSettingRequest, actorID string) (*models.Setting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid setting payload")
	}

	var oldValue *string
	prior, err := s.repo.Get(ctx, req.Key)
	switch {
	case err == nil:
		v := prior.Value
		oldValue = &v
	case errors.Is(err, sql.ErrNoRows):
		// first write for this key
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read current setting")
	}

	setting := &models.Setting{
		Key:   req.Key,
		Value: *req.Value,
	}
	if req.Description != "" {
		setting.Description = &req.Description
	} else if prior != nil {
		setting.Description = prior.Description
	}
	if actorID != "" {
		setting.UpdatedBy = &actorID
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save setting")
	}

	table := "settings"
	newValue := setting.Value
	s.emitAudit(ctx, &models.AuditLog{
		UserID:    optionalID(actorID),
		Action:    models.AuditActionUpdateSettings,
		TableName: &table,
		RecordID:  &setting.Key,
		OldValue:  oldValue,
		NewValue:  &newValue,
	})
	return setting, nil
}

func (s *SettingService) emitAudit(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
