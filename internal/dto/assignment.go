package dto

import (
	"time"

	"github.com/smp-yps/assignment-api/internal/models"
)

// CreateAssignmentRequest is the payload for creating an assignment.
// AssignedDate is optional and defaults to the creation instant; the
// quota bucket is always stamped from the creation instant either way.
type CreateAssignmentRequest struct {
	Subject      string     `json:"subject" validate:"required"`
	LearningGoal string     `json:"learning_goal" validate:"required"`
	Type         string     `json:"type" validate:"required,oneof=task exam"`
	ClassIDs     []string   `json:"class_ids" validate:"required,min=1,dive,required"`
	AssignedDate *time.Time `json:"assigned_date,omitempty"`
}

// ClassQuota summarises weekly quota usage for one class.
type ClassQuota struct {
	Class           models.Class `json:"class"`
	CurrentCount    int          `json:"current_count"`
	Remaining       int          `json:"remaining"`
	QuotaPercentage float64      `json:"quota_percentage"`
}

// UpdateGradeStatusRequest toggles the graded flag on an assignment.
type UpdateGradeStatusRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	IsGraded     *bool  `json:"is_graded" validate:"required"`
}
