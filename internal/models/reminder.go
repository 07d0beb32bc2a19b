package models

import "time"

// ReminderLog marks that a reminder reached the provider for an
// (assignment, teacher) pair. Its mere presence suppresses re-sending,
// regardless of the delivery status recorded.
type ReminderLog struct {
	ID             string    `db:"id" json:"id"`
	AssignmentID   string    `db:"assignment_id" json:"assignment_id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	SentAt         time.Time `db:"sent_at" json:"sent_at"`
	MessageSID     *string   `db:"message_sid" json:"message_sid,omitempty"`
	MessageContent *string   `db:"message_content" json:"message_content,omitempty"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
