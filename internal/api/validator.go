package api

import (
	"github.com/go-playground/validator/v10"

	"schoolsite-backend/internal/validation"
)

// Validator adapts validator/v10 to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns the validator installed on the echo instance
func NewValidator() *Validator {
	return &Validator{validate: validation.New()}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i any) error {
	return v.validate.Struct(i)
}
