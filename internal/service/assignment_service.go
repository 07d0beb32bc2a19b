package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type assignmentStore interface {
	CreateWithLinks(ctx context.Context, assignment *models.Assignment, classIDs []string) error
	CountForClassAndTeacher(ctx context.Context, classID string, weekNumber, year int, teacherID string) (int, error)
	ListDetails(ctx context.Context, teacherID, classID string) ([]models.AssignmentDetail, error)
	GetStatus(ctx context.Context, assignmentID string) (*models.AssignmentStatus, error)
	UpdateStatus(ctx context.Context, status *models.AssignmentStatus) error
}

type assignmentClassStore interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ListAll(ctx context.Context) ([]models.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
}

type quotaEnforcer interface {
	Limit(ctx context.Context) int
	CurrentWeekBucket() (week, year int)
	CheckQuota(ctx context.Context, teacherID string, classes []models.Class) error
}

// AssignmentService creates and lists assignments and tracks their
// grading status.
type AssignmentService struct {
	repo      assignmentStore
	classes   assignmentClassStore
	quota     quotaEnforcer
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssignmentService constructs the service.
func NewAssignmentService(repo assignmentStore, classes assignmentClassStore, quota quotaEnforcer, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		classes:   classes,
		quota:     quota,
		audit:     audit,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the payload, enforces the weekly quota for every
// target class and writes the assignment with its links and initial
// status in one transaction. The week bucket is stamped from the
// creation instant regardless of the supplied assigned date.
func (s *AssignmentService) Create(ctx context.Context, req dto.CreateAssignmentRequest, teacherID string) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	classes := make([]models.Class, 0, len(req.ClassIDs))
	for _, classID := range req.ClassIDs {
		class, err := s.classes.FindByID(ctx, classID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found: "+classID)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class")
		}
		classes = append(classes, *class)
	}

	if err := s.quota.CheckQuota(ctx, teacherID, classes); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	week, year := s.quota.CurrentWeekBucket()
	assignedDate := now
	if req.AssignedDate != nil {
		assignedDate = req.AssignedDate.UTC()
	}
	assignment := &models.Assignment{
		Subject:      req.Subject,
		LearningGoal: req.LearningGoal,
		Type:         models.AssignmentType(req.Type),
		WeekNumber:   week,
		Year:         year,
		Status:       models.AssignmentPending,
		AssignedDate: assignedDate,
		TeacherID:    teacherID,
	}
	if err := s.repo.CreateWithLinks(ctx, assignment, req.ClassIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	table := "assignments"
	payload, _ := json.Marshal(assignment)
	newValue := string(payload)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:    optionalID(teacherID),
		Action:    models.AuditActionCreateAssignment,
		TableName: &table,
		RecordID:  &assignment.ID,
		NewValue:  &newValue,
	})
	return assignment, nil
}

// List returns the joined detail rows. An empty teacherID lists across
// all teachers; an empty classID lists across all classes.
func (s *AssignmentService) List(ctx context.Context, teacherID, classID string) ([]models.AssignmentDetail, error) {
	details, err := s.repo.ListDetails(ctx, teacherID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if details == nil {
		details = []models.AssignmentDetail{}
	}
	return details, nil
}

// ClassQuotas reports current-week quota usage for each class the
// teacher owns. Remaining goes negative when a class is over quota.
func (s *AssignmentService) ClassQuotas(ctx context.Context, teacherID string) ([]dto.ClassQuota, error) {
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	limit := s.quota.Limit(ctx)
	week, year := s.quota.CurrentWeekBucket()
	quotas := make([]dto.ClassQuota, 0, len(classes))
	for _, class := range classes {
		count, err := s.repo.CountForClassAndTeacher(ctx, class.ID, week, year, teacherID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count weekly assignments")
		}
		quotas = append(quotas, dto.ClassQuota{
			Class:           class,
			CurrentCount:    count,
			Remaining:       limit - count,
			QuotaPercentage: float64(count) / float64(limit) * 100,
		})
	}
	return quotas, nil
}

// UpdateGradeStatus toggles the graded flag. Marking graded stamps
// graded_at and the grading actor; unmarking clears both.
func (s *AssignmentService) UpdateGradeStatus(ctx context.Context, req dto.UpdateGradeStatusRequest, actorID string) (*models.AssignmentStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade status payload")
	}

	status, err := s.repo.GetStatus(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grading status")
	}

	oldPayload, _ := json.Marshal(status)
	if *req.IsGraded {
		gradedAt := s.now().UTC()
		status.IsGraded = true
		status.GradedAt = &gradedAt
		status.GradeInputBy = optionalID(actorID)
	} else {
		status.IsGraded = false
		status.GradedAt = nil
		status.GradeInputBy = nil
	}
	if err := s.repo.UpdateStatus(ctx, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grading status")
	}

	table := "assignment_statuses"
	newPayload, _ := json.Marshal(status)
	oldValue := string(oldPayload)
	newValue := string(newPayload)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:    optionalID(actorID),
		Action:    models.AuditActionUpdateGradeStatus,
		TableName: &table,
		RecordID:  &req.AssignmentID,
		OldValue:  &oldValue,
		NewValue:  &newValue,
	})
	return status, nil
}

func (s *AssignmentService) emitAudit(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}
