package events

import "time"

// Event types derived from the Mandatory column of battle-assembly imports.
const (
	TypeMandatory = "Mandatory"
	TypeOptional  = "Optional"
	TypeInvalid   = "Invalid"
)

// Event represents a scheduled event.
type Event struct {
	ID            string    `json:"event_id"`
	Author        int64     `json:"author"`
	Organizer     string    `json:"organizer"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          string    `json:"type"`
	Period        bool      `json:"period"`
	StartTime     time.Time `json:"starttime"`
	EndTime       time.Time `json:"endtime"`
	ConfirmedDoDs []string  `json:"confirmed_dods"`
	CreatedAt     time.Time `json:"created_at"`
}
