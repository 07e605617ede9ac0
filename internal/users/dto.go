package users

type RegisterUserRequest struct {
	Name           string  `json:"name" validate:"required,max=200"`
	DoD            string  `json:"dod" validate:"required,max=20"`
	Grade          string  `json:"grade" validate:"required,max=10"`
	Rank           string  `json:"rank" validate:"required,max=50"`
	Branch         string  `json:"branch" validate:"required,max=100"`
	Superior       string  `json:"superior" validate:"max=200"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Description    *string `json:"description,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

type UpdateUserRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Grade          *string `json:"grade,omitempty" validate:"omitempty,max=10"`
	Rank           *string `json:"rank,omitempty" validate:"omitempty,max=50"`
	Branch         *string `json:"branch,omitempty" validate:"omitempty,max=100"`
	Superior       *string `json:"superior,omitempty" validate:"omitempty,max=200"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Description    *string `json:"description,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Signature      *string `json:"signature,omitempty"`
}

type ListUsersFilters struct {
	DoD     *string
	Rank    *string
	Officer *bool
	Limit   int
}

// ProfileResponse is the wire form of a profile; picture and signature carry
// base64 blob contents when present.
type ProfileResponse struct {
	AccountID      int64   `json:"account_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DoD            string  `json:"dod"`
	Grade          string  `json:"grade"`
	Rank           string  `json:"rank"`
	Branch         string  `json:"branch"`
	Superior       string  `json:"superior,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Description    *string `json:"description,omitempty"`
	Status         int     `json:"user_status"`
	Officer        bool    `json:"officer"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Signature      *string `json:"signature,omitempty"`
}
