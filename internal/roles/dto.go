package roles

type CreateRoleRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Level int    `json:"level" validate:"gte=0"`
}

type AssignRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type RevokeRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type InviteRoleRequest struct {
	Role    string `json:"role" validate:"required"`
	EventID string `json:"event_id" validate:"required,uuid"`
}

type PreassignRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}
