package models

import "time"

// AssignmentDetail is one row of the assignment listing join:
// assignment + linked class + grading status + owning teacher.
type AssignmentDetail struct {
	Assignment
	ClassID      string     `db:"link_class_id" json:"class_id"`
	ClassGrade   int        `db:"class_grade" json:"class_grade"`
	ClassName    string     `db:"class_name" json:"class_name"`
	IsGraded     bool       `db:"is_graded" json:"is_graded"`
	GradedAt     *time.Time `db:"graded_at" json:"graded_at,omitempty"`
	GradeInputBy *string    `db:"grade_input_by" json:"grade_input_by,omitempty"`
	TeacherName  string     `db:"teacher_name" json:"teacher_name"`
	TeacherEmail string     `db:"teacher_email" json:"teacher_email"`
}

// AssignmentWithTeacher pairs an assignment with its owning teacher's
// contact details for reminder dispatch.
type AssignmentWithTeacher struct {
	Assignment
	TeacherName  string  `db:"teacher_name" json:"teacher_name"`
	TeacherPhone *string `db:"teacher_phone" json:"teacher_phone,omitempty"`
}
