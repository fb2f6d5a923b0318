package resend

// AccessRequest is the payload for inviting a user to a tournament role.
type AccessRequest struct {
	Slug   string `json:"slug"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	TeamID string `json:"teamId"`
}
