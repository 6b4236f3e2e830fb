package auth

import (
	"chat-hub/errors"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type RegisterRequest struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,alphanum,min=3,max=24"`
	Password string `validate:"required,min=12,max=72"`
}

// ProfileUpdateRequest covers the mutable account fields. Usernames follow
// the same rule as registration; the display name is free-form.
type ProfileUpdateRequest struct {
	Username    string `validate:"omitempty,alphanum,min=3,max=24"`
	DisplayName string `validate:"omitempty,max=64"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return errors.ErrInvalidPassword
	}
	return nil
}

func ValidateProfileUpdate(req ProfileUpdateRequest) error {
	if err := validate.Struct(req); err != nil {
		return errors.ErrInvalidUsername
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
