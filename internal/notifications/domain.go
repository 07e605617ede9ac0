package notifications

import "time"

// Notification categories.
const (
	TypeEventInvite = "event_invite"
	TypeReminder    = "reminder"
	TypeSystem      = "system"
)

// Notification is one in-app notification row.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"notification_type"`
	Sender    string    `json:"sender"`
	Receiver  int64     `json:"receiver"`
	Ref       string    `json:"ref,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
