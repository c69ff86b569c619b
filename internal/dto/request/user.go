package request

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	FirstName  *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName   *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=regular admin"`
	IsVerified *bool   `json:"is_verified,omitempty"`
	IsStaff    *bool   `json:"is_staff,omitempty"`
}
