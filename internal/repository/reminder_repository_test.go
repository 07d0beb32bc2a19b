package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/models"
)

func newReminderMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReminderLogRepositoryFindByAssignmentAndTeacher(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderLogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "assignment_id", "teacher_id", "sent_at", "message_sid", "message_content", "status", "created_at"}).
		AddRow("r-1", "a-1", "teacher-1", time.Now(), "SM123", "pesan", "sent", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM reminder_logs WHERE assignment_id = $1 AND teacher_id = $2")).
		WithArgs("a-1", "teacher-1").
		WillReturnRows(rows)

	log, err := repo.FindByAssignmentAndTeacher(context.Background(), "a-1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "sent", log.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderLogRepositoryFindNotFound(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderLogRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reminder_logs WHERE assignment_id = $1 AND teacher_id = $2")).
		WithArgs("a-1", "teacher-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByAssignmentAndTeacher(context.Background(), "a-1", "teacher-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderLogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newReminderMock(t)
	defer cleanup()
	repo := NewReminderLogRepository(db)

	mock.ExpectExec("INSERT INTO reminder_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	sid := "SM123"
	log := &models.ReminderLog{
		AssignmentID: "a-1",
		TeacherID:    "teacher-1",
		SentAt:       time.Now().UTC(),
		MessageSID:   &sid,
		Status:       "sent",
	}
	err := repo.Create(context.Background(), log)
	require.NoError(t, err)
	assert.NotEmpty(t, log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
