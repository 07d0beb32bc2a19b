package models

import "time"

// SettingMaxAssignmentsPerWeek is the key of the weekly quota ceiling.
const SettingMaxAssignmentsPerWeek = "max_assignments_per_class_per_week"

// Setting is a key/value configuration row. Mutations always go through
// the settings service so each change leaves an audit entry.
type Setting struct {
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description *string   `db:"description" json:"description,omitempty"`
	UpdatedBy   *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
