package roles

import "time"

// Definition maps a role name to its numeric privilege level. Higher levels
// dominate lower ones when claim bags are merged.
type Definition struct {
	Name      string
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
