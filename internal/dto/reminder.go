package dto

// SendReminderRequest targets a single assignment.
type SendReminderRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
}

// ReminderResult is the structured outcome of one reminder dispatch.
// Provider failures are reported here rather than as errors so a batch
// run can keep going.
type ReminderResult struct {
	AssignmentID string `json:"assignment_id"`
	Success      bool   `json:"success"`
	MessageSID   string `json:"message_sid,omitempty"`
	Message      string `json:"message,omitempty"`
}
