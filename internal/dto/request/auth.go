package request

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"first_name,omitempty" validate:"max=150"`
	LastName  string `json:"last_name,omitempty" validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,max=6"`
}

type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}
