package events

import "time"

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Type        string    `json:"type" validate:"required,oneof=Mandatory Optional Invalid"`
	Period      bool      `json:"period"`
	StartTime   time.Time `json:"starttime" validate:"required"`
	EndTime     time.Time `json:"endtime" validate:"required"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Type        *string    `json:"type,omitempty" validate:"omitempty,oneof=Mandatory Optional Invalid"`
	Period      *bool      `json:"period,omitempty"`
	StartTime   *time.Time `json:"starttime,omitempty"`
	EndTime     *time.Time `json:"endtime,omitempty"`
}

type ImportRequest struct {
	Filename     string   `json:"filename" validate:"required"`
	CSVFile      string   `json:"csv_file" validate:"required"`
	DeviceTokens []string `json:"device_tokens,omitempty"`
}
