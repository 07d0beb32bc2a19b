package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type classStore interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByGradeAndName(ctx context.Context, grade int, name string) (*models.Class, error)
	ListAll(ctx context.Context) ([]models.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
}

type classUserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type classCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context, keys ...string)
}

// ClassService manages class sections. Listings are cached; creation
// invalidates the affected keys.
type ClassService struct {
	repo      classStore
	users     classUserFinder
	cache     classCache
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the service. Cache may be nil.
func NewClassService(repo classStore, users classUserFinder, cache classCache, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, users: users, cache: cache, audit: audit, validator: validate, logger: logger}
}

// Create adds a class after checking the teacher exists and the
// (grade, name) pair is free.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest, actorID string) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	if req.TeacherID != "" {
		if _, err := s.users.FindByID(ctx, req.TeacherID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify teacher")
		}
	}

	if _, err := s.repo.FindByGradeAndName(ctx, req.Grade, req.Name); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %d%s already exists", req.Grade, req.Name))
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class uniqueness")
	}

	class := &models.Class{Grade: req.Grade, Name: req.Name}
	if req.TeacherID != "" {
		class.TeacherID = &req.TeacherID
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	if s.cache != nil {
		keys := []string{CacheKeyClassesAll}
		if req.TeacherID != "" {
			keys = append(keys, CacheKeyClassesByTeacher+req.TeacherID)
		}
		s.cache.Invalidate(ctx, keys...)
	}

	table := "classes"
	payload, _ := json.Marshal(class)
	newValue := string(payload)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:    optionalID(actorID),
		Action:    models.AuditActionCreateClass,
		TableName: &table,
		RecordID:  &class.ID,
		NewValue:  &newValue,
	})
	return class, nil
}

// List returns every class, served from cache when possible.
func (s *ClassService) List(ctx context.Context) ([]models.Class, bool, error) {
	if s.cache != nil {
		var cached []models.Class
		if err := s.cache.GetJSON(ctx, CacheKeyClassesAll, &cached); err == nil {
			return cached, true, nil
		}
	}
	classes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, CacheKeyClassesAll, classes)
	}
	return classes, false, nil
}

// ListByTeacher returns the classes owned by one teacher, served from
// cache when possible.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, bool, error) {
	key := CacheKeyClassesByTeacher + teacherID
	if s.cache != nil {
		var cached []models.Class
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached, true, nil
		}
	}
	classes, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if classes == nil {
		classes = []models.Class{}
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, classes)
	}
	return classes, false, nil
}

func (s *ClassService) emitAudit(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
