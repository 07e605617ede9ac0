package users

import "time"

// Profile represents a member profile attached to an account.
type Profile struct {
	AccountID      int64
	Name           string
	Email          string
	DoD            string
	Grade          string
	Rank           string
	Branch         string
	Superior       string
	Phone          *string
	Description    *string
	Status         int
	Officer        bool
	ProfilePicture *string
	Signature      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOfficerGrade reports whether a pay grade denotes an officer or warrant
// officer (grades starting with "O" or "W").
func IsOfficerGrade(grade string) bool {
	if grade == "" {
		return false
	}
	return grade[0] == 'O' || grade[0] == 'W'
}
