package models

import "time"

// AssignmentType distinguishes regular tasks from summative exams.
type AssignmentType string

const (
	AssignmentTypeTask AssignmentType = "task"
	AssignmentTypeExam AssignmentType = "exam"
)

// AssignmentLifecycle is the denormalized display status on the
// assignment row. It is advisory only; the authoritative grading state
// lives in AssignmentStatus.
type AssignmentLifecycle string

const (
	AssignmentPending AssignmentLifecycle = "pending"
	AssignmentGraded  AssignmentLifecycle = "graded"
	AssignmentOverdue AssignmentLifecycle = "overdue"
)

// Assignment is a task or exam a teacher placed into one or more
// classes. WeekNumber and Year are stamped once from the creation
// instant and never recomputed; they form the quota bucket.
type Assignment struct {
	ID           string              `db:"id" json:"id"`
	Subject      string              `db:"subject" json:"subject"`
	LearningGoal string              `db:"learning_goal" json:"learning_goal"`
	Type         AssignmentType      `db:"type" json:"type"`
	WeekNumber   int                 `db:"week_number" json:"week_number"`
	Year         int                 `db:"year" json:"year"`
	Status       AssignmentLifecycle `db:"status" json:"status"`
	AssignedDate time.Time           `db:"assigned_date" json:"assigned_date"`
	TeacherID    string              `db:"teacher_id" json:"teacher_id"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// ClassAssignment links an assignment to a class. One row per
// (class, assignment) pair.
type ClassAssignment struct {
	ClassID      string    `db:"class_id" json:"class_id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	AssignedAt   time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignmentStatus is the authoritative 1:1 grading record. GradedAt
// and GradeInputBy are non-null iff IsGraded is true.
type AssignmentStatus struct {
	AssignmentID string     `db:"assignment_id" json:"assignment_id"`
	IsGraded     bool       `db:"is_graded" json:"is_graded"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	GradeInputBy *string    `db:"grade_input_by" json:"grade_input_by,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
