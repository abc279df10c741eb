package model

import "time"

// AppSetting represents a key-value pair for global application configuration.
type AppSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

// PublicSettingKeys are the settings exposed to anonymous visitors.
var PublicSettingKeys = []string{
	"institute_name",
	"contact_email",
	"contact_phone",
	"address",
	"opening_hours",
}
