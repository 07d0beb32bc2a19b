package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smp-yps/assignment-api/internal/dto"
	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

// Messenger delivers a WhatsApp message and reports the provider's
// message id and delivery status.
type Messenger interface {
	SendWhatsApp(ctx context.Context, to, body string) (sid, status string, err error)
}

type reminderAssignmentStore interface {
	FindWithTeacher(ctx context.Context, id string) (*models.AssignmentWithTeacher, error)
	ListPendingReminderIDs(ctx context.Context) ([]string, error)
}

type reminderLogStore interface {
	FindByAssignmentAndTeacher(ctx context.Context, assignmentID, teacherID string) (*models.ReminderLog, error)
	Create(ctx context.Context, log *models.ReminderLog) error
}

// ReminderService sends grading reminders over WhatsApp. Dedup is
// keyed on the (assignment, teacher) pair: once a reminder log exists,
// that pair is never messaged again.
type ReminderService struct {
	assignments reminderAssignmentStore
	logs        reminderLogStore
	messenger   Messenger
	audit       auditRecorder
	logger      *zap.Logger
	schoolName  string
	now         func() time.Time
}

// NewReminderService constructs the service. Messenger may be nil when
// the provider is not configured; sends then fail soft.
func NewReminderService(assignments reminderAssignmentStore, logs reminderLogStore, messenger Messenger, audit auditRecorder, logger *zap.Logger, schoolName string) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		assignments: assignments,
		logs:        logs,
		messenger:   messenger,
		audit:       audit,
		logger:      logger,
		schoolName:  schoolName,
		now:         time.Now,
	}
}

// Send dispatches a reminder for one assignment to its teacher. All
// delivery problems are reported in the result so batch runs keep
// going; only repository failures surface as errors.
func (s *ReminderService) Send(ctx context.Context, assignmentID, actorID string) (dto.ReminderResult, error) {
	result := dto.ReminderResult{AssignmentID: assignmentID}

	row, err := s.assignments.FindWithTeacher(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if row.TeacherPhone == nil || *row.TeacherPhone == "" {
		result.Message = fmt.Sprintf("teacher %s has no phone number registered", row.TeacherName)
		return result, nil
	}

	if _, err := s.logs.FindByAssignmentAndTeacher(ctx, assignmentID, row.TeacherID); err == nil {
		result.Message = "reminder already sent for this assignment"
		return result, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check reminder history")
	}

	if s.messenger == nil {
		result.Message = appErrors.ErrProviderNotConfigured.Message
		return result, nil
	}

	body := s.composeMessage(row)
	phone := FormatIndonesianPhone(*row.TeacherPhone)
	sid, status, err := s.messenger.SendWhatsApp(ctx, phone, body)
	if err != nil {
		s.logger.Warn("whatsapp send failed",
			zap.String("assignment_id", assignmentID),
			zap.String("teacher_id", row.TeacherID),
			zap.Error(err))
		result.Message = "failed to send reminder"
		return result, nil
	}

	log := &models.ReminderLog{
		AssignmentID:   assignmentID,
		TeacherID:      row.TeacherID,
		SentAt:         s.now().UTC(),
		MessageSID:     &sid,
		MessageContent: &body,
		Status:         status,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return result, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record reminder log")
	}

	table := "reminder_logs"
	s.emitAudit(ctx, &models.AuditLog{
		UserID:    optionalID(actorID),
		Action:    models.AuditActionSendReminder,
		TableName: &table,
		RecordID:  &assignmentID,
	})

	result.Success = true
	result.MessageSID = sid
	return result, nil
}

// SendAllPending dispatches reminders for every ungraded assignment
// that has no reminder log yet and returns one result per assignment.
func (s *ReminderService) SendAllPending(ctx context.Context, actorID string) ([]dto.ReminderResult, error) {
	ids, err := s.assignments.ListPendingReminderIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending reminders")
	}

	results := make([]dto.ReminderResult, 0, len(ids))
	for _, id := range ids {
		result, err := s.Send(ctx, id, actorID)
		if err != nil {
			result.Message = appErrors.FromError(err).Message
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ReminderService) composeMessage(row *models.AssignmentWithTeacher) string {
	school := strings.ToUpper(s.schoolName)
	return fmt.Sprintf(`Yth. Bapak/Ibu %s,

*REMINDER PENILAIAN TUGAS*
%s

*Tugas/Ujian*: %s
*Tujuan Pembelajaran*: %s
*Tanggal Dibuat*: %s

Tugas ini sudah melewati batas pengumpulan dan belum dinilai.

Mohon segera melakukan penilaian dan menginput nilai ke dalam *Rapor Sementara*.

Terima kasih,
Admin %s`,
		row.TeacherName,
		school,
		row.Subject,
		row.LearningGoal,
		row.AssignedDate.Format("02/01/2006"),
		school)
}

func (s *ReminderService) emitAudit(ctx context.Context, entry *models.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

// FormatIndonesianPhone normalises a locally formatted number to E.164
// with the Indonesian country code.
func FormatIndonesianPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "0"):
		return "+62" + phone[1:]
	case strings.HasPrefix(phone, "62"):
		return "+" + phone
	case strings.HasPrefix(phone, "+"):
		return phone
	default:
		return "+" + phone
	}
}
