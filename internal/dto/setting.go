package dto

// UpsertSettingRequest creates or replaces a configuration value.
// Value is a pointer so a missing field can be told apart from an
// intentionally empty string.
type UpsertSettingRequest struct {
	Key         string  `json:"key" validate:"required"`
	Value       *string `json:"value" validate:"required"`
	Description string  `json:"description"`
}
