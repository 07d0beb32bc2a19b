package dto

// CreateClassRequest is the admin payload for creating a class.
type CreateClassRequest struct {
	Grade     int    `json:"grade" validate:"required,min=7,max=9"`
	Name      string `json:"name" validate:"required"`
	TeacherID string `json:"teacher_id"`
}
