package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smp-yps/assignment-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryCreateWithLinks(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_assignments")).
		WithArgs("class-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_assignments")).
		WithArgs("class-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_statuses")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.Assignment{
		Subject:      "Matematika",
		LearningGoal: "Aljabar dasar",
		Type:         models.AssignmentTypeTask,
		WeekNumber:   12,
		Year:         2026,
		Status:       models.AssignmentPending,
		AssignedDate: time.Now().UTC(),
		TeacherID:    "teacher-1",
	}
	err := repo.CreateWithLinks(context.Background(), assignment, []string{"class-1", "class-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateWithLinksRollsBackOnLinkFailure(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_assignments")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assignment := &models.Assignment{
		Subject:      "IPA",
		LearningGoal: "Fotosintesis",
		Type:         models.AssignmentTypeExam,
		WeekNumber:   12,
		Year:         2026,
		Status:       models.AssignmentPending,
		AssignedDate: time.Now().UTC(),
		TeacherID:    "teacher-1",
	}
	err := repo.CreateWithLinks(context.Background(), assignment, []string{"class-1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCountForClassAndTeacher(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments a")).
		WithArgs("class-1", 12, 2026, "teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountForClassAndTeacher(context.Background(), "class-1", 12, 2026, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListDetailsScopedToTeacher(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "subject", "learning_goal", "type", "week_number", "year", "status", "assigned_date", "teacher_id", "created_at", "updated_at",
		"link_class_id", "class_grade", "class_name", "is_graded", "graded_at", "grade_input_by", "teacher_name", "teacher_email",
	}).AddRow("a-1", "Matematika", "Aljabar", "task", 12, 2026, "pending", now, "teacher-1", now, now,
		"class-1", 7, "A", false, nil, nil, "Bu Sari", "sari@example.com")
	mock.ExpectQuery("SELECT a.id, a.subject").
		WithArgs("teacher-1").
		WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background(), "teacher-1", "")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "class-1", details[0].ClassID)
	assert.Equal(t, 7, details[0].ClassGrade)
	assert.False(t, details[0].IsGraded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListPendingReminderIDs(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.id FROM assignments a")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a-1").AddRow("a-2"))

	ids, err := repo.ListPendingReminderIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "a-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("UPDATE assignment_statuses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	gradedAt := time.Now().UTC()
	grader := "user-1"
	err := repo.UpdateStatus(context.Background(), &models.AssignmentStatus{
		AssignmentID: "a-1",
		IsGraded:     true,
		GradedAt:     &gradedAt,
		GradeInputBy: &grader,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
