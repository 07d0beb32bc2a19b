package models

import "time"

// AuditAction values form a closed set; repositories store them verbatim.
const (
	AuditActionCreateAssignment  = "create_assignment"
	AuditActionUpdateAssignment  = "update_assignment"
	AuditActionDeleteAssignment  = "delete_assignment"
	AuditActionCreateClass       = "create_class"
	AuditActionUpdateClass       = "update_class"
	AuditActionDeleteClass       = "delete_class"
	AuditActionUpdateSettings    = "update_settings"
	AuditActionSendReminder      = "send_reminder"
	AuditActionUpdateGradeStatus = "update_grade_status"
	AuditActionUserLogin         = "user_login"
	AuditActionUserLogout        = "user_logout"
	AuditActionUserRegistration  = "user_registration"
)

// AuditLog is an append-only record of a user (or system) action. Rows
// are never updated or deleted.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Action    string    `db:"action" json:"action"`
	TableName *string   `db:"table_name" json:"table_name,omitempty"`
	RecordID  *string   `db:"record_id" json:"record_id,omitempty"`
	OldValue  *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue  *string   `db:"new_value" json:"new_value,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
