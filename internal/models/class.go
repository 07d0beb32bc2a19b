package models

import "time"

// Grade bounds for the junior-high levels this school serves.
const (
	MinClassGrade = 7
	MaxClassGrade = 9
)

// Class represents a class section owned by at most one teacher.
// The (grade, name) pair is unique.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Grade     int       `db:"grade" json:"grade"`
	Name      string    `db:"name" json:"name"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
