package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"unicode"

	"github.com/example/englishschool/internal/internaltypes"
)

const (
	msgUsernameTaken = "This username is already taken!"
	msgEmailTaken    = "This email is already registered!"
	msgWeakPassword  = "Password must be at least 8 characters and include uppercase, lowercase, number, and special character."
	msgMismatch      = "Passwords do not match."
	msgBadCode       = "Invalid registration code for teacher."
)

type SignupRequest struct {
	Username string `form:"username" validate:"required,max=150"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required"`
	Confirm  string `form:"confirm_password" validate:"required"`
	Role     string `form:"user_type" validate:"required,oneof=student teacher"`
	Code     string `form:"registration_code"`
}

type UserCreator interface {
	CreateUser(ctx context.Context, nu NewUser) (User, error)
}

// Registration applies the signup policy before creating an account.
type Registration struct {
	Users UserCreator
	// TeacherCode must be presented to sign up as a teacher. Empty closes
	// teacher signup entirely.
	TeacherCode string
}

func (r Registration) Register(ctx context.Context, req SignupRequest) (User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	req.Code = strings.TrimSpace(req.Code)

	if err := internaltypes.ValidateForm(req); err != nil {
		return User{}, err
	}
	role, _ := ParseRole(req.Role)
	if role == RoleTeacher && !r.codeOK(req.Code) {
		return User{}, internaltypes.NewValidationError(internaltypes.ErrUnauthorized, "registration_code", msgBadCode)
	}
	if !StrongPassword(req.Password) {
		return User{}, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "password", msgWeakPassword)
	}
	if req.Password != req.Confirm {
		return User{}, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "confirm_password", msgMismatch)
	}
	return r.Users.CreateUser(ctx, NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
}

func (r Registration) codeOK(code string) bool {
	if r.TeacherCode == "" || len(code) != len(r.TeacherCode) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(r.TeacherCode)) == 1
}

// StrongPassword wants 8+ characters mixing lower, upper, digit and a
// non-alphanumeric character.
func StrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, c := range pw {
		switch {
		case unicode.IsLower(c):
			lower = true
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsDigit(c):
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}
