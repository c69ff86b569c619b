package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=regular admin"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(sampleRequest{Email: "a@x.com", Code: "123456"}))

	errs := ValidateStruct(sampleRequest{Email: "nope", Code: "12ab56", Role: "root"})
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Equal(t, "Must contain digits only", errs["code"])
	assert.Equal(t, "Must be one of: regular, admin", errs["role"])

	errs = ValidateStruct(sampleRequest{Code: "123"})
	assert.Equal(t, "This field is required", errs["email"])
	assert.Equal(t, "Must be exactly 6 characters", errs["code"])
}

func TestFormatValidationErrors(t *testing.T) {
	assert.Equal(t, "email: bad", FormatValidationErrors(map[string]string{"email": "bad"}))
	assert.Equal(t, "", FormatValidationErrors(nil))
	assert.Equal(t, "email: bad; password: short", FormatValidationErrors(map[string]string{"password": "short", "email": "bad"}))
}
