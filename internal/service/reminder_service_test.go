package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/models"
	appErrors "github.com/smp-yps/assignment-api/pkg/errors"
)

type reminderAssignmentStub struct {
	rows       map[string]*models.AssignmentWithTeacher
	pendingIDs []string
}

func (s *reminderAssignmentStub) FindWithTeacher(ctx context.Context, id string) (*models.AssignmentWithTeacher, error) {
	if row, ok := s.rows[id]; ok {
		return row, nil
	}
	return nil, sql.ErrNoRows
}

func (s *reminderAssignmentStub) ListPendingReminderIDs(ctx context.Context) ([]string, error) {
	return s.pendingIDs, nil
}

type reminderLogStub struct {
	logs []models.ReminderLog
}

func (s *reminderLogStub) FindByAssignmentAndTeacher(ctx context.Context, assignmentID, teacherID string) (*models.ReminderLog, error) {
	for i := range s.logs {
		if s.logs[i].AssignmentID == assignmentID && s.logs[i].TeacherID == teacherID {
			return &s.logs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *reminderLogStub) Create(ctx context.Context, log *models.ReminderLog) error {
	s.logs = append(s.logs, *log)
	return nil
}

type messengerStub struct {
	sent []string
	to   []string
	err  error
}

func (s *messengerStub) SendWhatsApp(ctx context.Context, to, body string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	s.sent = append(s.sent, body)
	s.to = append(s.to, to)
	return "SM123", "queued", nil
}

func reminderRow(phone string) *models.AssignmentWithTeacher {
	row := &models.AssignmentWithTeacher{
		Assignment: models.Assignment{
			ID:           "a-1",
			Subject:      "Matematika",
			LearningGoal: "Aljabar dasar",
			TeacherID:    "teacher-1",
			AssignedDate: time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
		},
		TeacherName: "Bu Sari",
	}
	if phone != "" {
		row.TeacherPhone = &phone
	}
	return row
}

func TestReminderServiceSendSuccess(t *testing.T) {
	assignments := &reminderAssignmentStub{rows: map[string]*models.AssignmentWithTeacher{"a-1": reminderRow("081234567890")}}
	logs := &reminderLogStub{}
	messenger := &messengerStub{}
	audit := &auditRecorderStub{}
	svc := NewReminderService(assignments, logs, messenger, audit, nil, "SMP YPS Singkole")

	result, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "SM123", result.MessageSID)

	require.Len(t, messenger.to, 1)
	assert.Equal(t, "+6281234567890", messenger.to[0])
	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0], "Bu Sari")
	assert.Contains(t, messenger.sent[0], "Matematika")
	assert.Contains(t, messenger.sent[0], "SMP YPS SINGKOLE")

	require.Len(t, logs.logs, 1)
	assert.Equal(t, "queued", logs.logs[0].Status)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionSendReminder, audit.entries[0].Action)
}

func TestReminderServiceSendDeduplicates(t *testing.T) {
	assignments := &reminderAssignmentStub{rows: map[string]*models.AssignmentWithTeacher{"a-1": reminderRow("081234567890")}}
	logs := &reminderLogStub{}
	messenger := &messengerStub{}
	svc := NewReminderService(assignments, logs, messenger, nil, nil, "SMP YPS Singkole")

	first, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.True(t, first.Success)

	second, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Contains(t, second.Message, "already sent")
	assert.Len(t, messenger.sent, 1)
}

func TestReminderServiceSendWithoutPhone(t *testing.T) {
	assignments := &reminderAssignmentStub{rows: map[string]*models.AssignmentWithTeacher{"a-1": reminderRow("")}}
	svc := NewReminderService(assignments, &reminderLogStub{}, &messengerStub{}, nil, nil, "SMP YPS Singkole")

	result, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "phone number")
}

func TestReminderServiceSendWithoutMessenger(t *testing.T) {
	assignments := &reminderAssignmentStub{rows: map[string]*models.AssignmentWithTeacher{"a-1": reminderRow("081234567890")}}
	logs := &reminderLogStub{}
	svc := NewReminderService(assignments, logs, nil, nil, nil, "SMP YPS Singkole")

	result, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, logs.logs)
}

func TestReminderServiceSendProviderFailureLeavesNoLog(t *testing.T) {
	assignments := &reminderAssignmentStub{rows: map[string]*models.AssignmentWithTeacher{"a-1": reminderRow("081234567890")}}
	logs := &reminderLogStub{}
	messenger := &messengerStub{err: errors.New("provider down")}
	svc := NewReminderService(assignments, logs, messenger, nil, nil, "SMP YPS Singkole")

	result, err := svc.Send(context.Background(), "a-1", "admin-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	// No log row means the next run retries this assignment.
	assert.Empty(t, logs.logs)
}

func TestReminderServiceSendUnknownAssignment(t *testing.T) {
	svc := NewReminderService(&reminderAssignmentStub{}, &reminderLogStub{}, &messengerStub{}, nil, nil, "SMP YPS Singkole")

	_, err := svc.Send(context.Background(), "missing", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReminderServiceSendAllPending(t *testing.T) {
	assignments := &reminderAssignmentStub{
		rows: map[string]*models.AssignmentWithTeacher{
			"a-1": reminderRow("081234567890"),
			"a-2": reminderRow(""),
		},
		pendingIDs: []string{"a-1", "a-2"},
	}
	svc := NewReminderService(assignments, &reminderLogStub{}, &messengerStub{}, nil, nil, "SMP YPS Singkole")

	results, err := svc.SendAllPending(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
}

func TestFormatIndonesianPhone(t *testing.T) {
	assert.Equal(t, "+6281234567890", FormatIndonesianPhone("081234567890"))
	assert.Equal(t, "+6281234567890", FormatIndonesianPhone("6281234567890"))
	assert.Equal(t, "+6281234567890", FormatIndonesianPhone("+6281234567890"))
	assert.Equal(t, "+14155550100", FormatIndonesianPhone("14155550100"))
}
