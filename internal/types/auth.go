// Package types provides request, response and profile types shared across CareerPilot packages.
package types

import (
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MinPasswordLength is the shortest accepted recruiter password.
const MinPasswordLength = 8

// SignupRequest starts a recruiter signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

// VerifyRequest completes a signup with the emailed code.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Recruiter is the public view of a recruiter account.
type Recruiter struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is returned by verify and login.
type AuthResponse struct {
	User  *Recruiter `json:"user"`
	Token string     `json:"token"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the strongpassword tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
	return validate
}

// StrongPassword reports whether pw has at least MinPasswordLength characters
// and contains an upper-case letter, a lower-case letter, a digit and a
// character that is neither.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsSpace(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Validate validates the SignupRequest.
func (r *SignupRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the VerifyRequest.
func (r *VerifyRequest) Validate() error {
	return Validator().Struct(r)
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return Validator().Struct(r)
}
