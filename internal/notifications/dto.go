package notifications

type CreateNotificationRequest struct {
	Receiver    *int64  `json:"receiver,omitempty"`
	ReceiverDoD *string `json:"receiver_dod,omitempty"`
	Type        string  `json:"notification_type" validate:"required,oneof=event_invite reminder system"`
	Sender      string  `json:"sender" validate:"required"`
	Ref         string  `json:"ref,omitempty"`
}

type ListNotificationsFilters struct {
	Read  *bool
	Type  *string
	Limit int
}

type ScheduleRequest struct {
	Time         string            `json:"time" validate:"required"`
	DeviceTokens []string          `json:"device_tokens" validate:"required,min=1"`
	Data         map[string]string `json:"data,omitempty"`
}
