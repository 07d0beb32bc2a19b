package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/smp-yps/assignment-api/internal/models"
)

// AssignmentRepository persists assignments, their class links and the
// 1:1 grading status rows.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateWithLinks inserts the assignment, one class link per class id
// and the initial grading status inside a single transaction, so an
// assignment row can never exist without its siblings.
func (r *AssignmentRepository) CreateWithLinks(ctx context.Context, assignment *models.Assignment, classIDs []string) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment tx: %w", err)
	}

	const insertAssignment = `INSERT INTO assignments (id, subject, learning_goal, type, week_number, year, status, assigned_date, teacher_id, created_at, updated_at)
VALUES (:id, :subject, :learning_goal, :type, :week_number, :year, :status, :assigned_date, :teacher_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertAssignment, assignment); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert assignment: %w", err)
	}

	const insertLink = `INSERT INTO class_assignments (class_id, assignment_id, assigned_at) VALUES ($1, $2, $3)`
	for _, classID := range classIDs {
		if _, err := tx.ExecContext(ctx, insertLink, classID, assignment.ID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert class assignment: %w", err)
		}
	}

	const insertStatus = `INSERT INTO assignment_statuses (assignment_id, is_graded, created_at, updated_at) VALUES ($1, FALSE, $2, $2)`
	if _, err := tx.ExecContext(ctx, insertStatus, assignment.ID, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert assignment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment tx: %w", err)
	}
	return nil
}

// CountForClassAndTeacher counts assignments a teacher linked to a
// class within the given week/year bucket.
func (r *AssignmentRepository) CountForClassAndTeacher(ctx context.Context, classID string, weekNumber, year int, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM assignments a
INNER JOIN class_assignments ca ON ca.assignment_id = a.id
WHERE ca.class_id = $1 AND a.week_number = $2 AND a.year = $3 AND a.teacher_id = $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID, weekNumber, year, teacherID); err != nil {
		return 0, fmt.Errorf("count assignments for class: %w", err)
	}
	return count, nil
}

// ListDetails returns joined assignment/class/status/teacher rows,
// optionally scoped to a teacher and/or a class.
func (r *AssignmentRepository) ListDetails(ctx context.Context, teacherID, classID string) ([]models.AssignmentDetail, error) {
	base := `SELECT a.id, a.subject, a.learning_goal, a.type, a.week_number, a.year, a.status, a.assigned_date, a.teacher_id, a.created_at, a.updated_at,
        ca.class_id AS link_class_id, c.grade AS class_grade, c.name AS class_name,
        s.is_graded, s.graded_at, s.grade_input_by,
        u.full_name AS teacher_name, u.email AS teacher_email
FROM assignments a
INNER JOIN class_assignments ca ON ca.assignment_id = a.id
INNER JOIN classes c ON c.id = ca.class_id
INNER JOIN assignment_statuses s ON s.assignment_id = a.id
INNER JOIN users u ON u.id = a.teacher_id`

	var conditions []string
	var args []interface{}
	if teacherID != "" {
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)+1))
		args = append(args, teacherID)
	}
	if classID != "" {
		conditions = append(conditions, fmt.Sprintf("c.id = $%d", len(args)+1))
		args = append(args, classID)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := base + clause + " ORDER BY a.created_at DESC, c.grade ASC, c.name ASC"
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	return details, nil
}

// ListUngradedDetails returns the joined rows whose status is not graded.
func (r *AssignmentRepository) ListUngradedDetails(ctx context.Context) ([]models.AssignmentDetail, error) {
	const query = `SELECT a.id, a.subject, a.learning_goal, a.type, a.week_number, a.year, a.status, a.assigned_date, a.teacher_id, a.created_at, a.updated_at,
        ca.class_id AS link_class_id, c.grade AS class_grade, c.name AS class_name,
        s.is_graded, s.graded_at, s.grade_input_by,
        u.full_name AS teacher_name, u.email AS teacher_email
FROM assignments a
INNER JOIN class_assignments ca ON ca.assignment_id = a.id
INNER JOIN classes c ON c.id = ca.class_id
INNER JOIN assignment_statuses s ON s.assignment_id = a.id
INNER JOIN users u ON u.id = a.teacher_id
WHERE s.is_graded = FALSE
ORDER BY a.assigned_date ASC, c.grade ASC, c.name ASC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list ungraded assignment details: %w", err)
	}
	return details, nil
}

// FindWithTeacher returns the assignment together with the owning
// teacher's name and phone number.
func (r *AssignmentRepository) FindWithTeacher(ctx context.Context, id string) (*models.AssignmentWithTeacher, error) {
	const query = `SELECT a.id, a.subject, a.learning_goal, a.type, a.week_number, a.year, a.status, a.assigned_date, a.teacher_id, a.created_at, a.updated_at,
        u.full_name AS teacher_name, u.phone_number AS teacher_phone
FROM assignments a
INNER JOIN users u ON u.id = a.teacher_id
WHERE a.id = $1 LIMIT 1`
	var row models.AssignmentWithTeacher
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment with teacher: %w", err)
	}
	return &row, nil
}

// ListPendingReminderIDs returns ids of ungraded assignments that have
// no reminder log at all (left anti-join on reminder_logs).
func (r *AssignmentRepository) ListPendingReminderIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT a.id FROM assignments a
INNER JOIN assignment_statuses s ON s.assignment_id = a.id
LEFT JOIN reminder_logs rl ON rl.assignment_id = a.id
WHERE s.is_graded = FALSE AND rl.id IS NULL
ORDER BY a.assigned_date ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list pending reminder ids: %w", err)
	}
	return ids, nil
}

// GetStatus returns the grading status row for an assignment.
func (r *AssignmentRepository) GetStatus(ctx context.Context, assignmentID string) (*models.AssignmentStatus, error) {
	const query = `SELECT assignment_id, is_graded, graded_at, grade_input_by, created_at, updated_at
FROM assignment_statuses WHERE assignment_id = $1 LIMIT 1`
	var status models.AssignmentStatus
	if err := r.db.GetContext(ctx, &status, query, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assignment status: %w", err)
	}
	return &status, nil
}

// UpdateStatus writes the graded flag and its companion columns in one
// statement so the graded_at/grade_input_by invariant cannot be broken.
func (r *AssignmentRepository) UpdateStatus(ctx context.Context, status *models.AssignmentStatus) error {
	status.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignment_statuses
SET is_graded = :is_graded, graded_at = :graded_at, grade_input_by = :grade_input_by, updated_at = :updated_at
WHERE assignment_id = :assignment_id`
	if _, err := r.db.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return nil
}
