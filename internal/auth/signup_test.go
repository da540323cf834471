package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/example/englishschool/internal/internaltypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	created []NewUser
	err     error
}

func (f *fakeUsers) CreateUser(_ context.Context, nu NewUser) (User, error) {
	if f.err != nil {
		return User{}, f.err
	}
	f.created = append(f.created, nu)
	return User{ID: int64(len(f.created)), Username: nu.Username, Email: nu.Email, Role: nu.Role}, nil
}

func TestStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"Secret1!":      true,
		"longer_Pass9":  true,
		"Sh0rt!":        false,
		"alllower1!":    false,
		"ALLUPPER1!":    false,
		"NoDigits!!":    false,
		"NoSpecial123":  false,
		"Ünïcode9?abcd": true,
	}
	for pw, want := range tests {
		assert.Equal(t, want, StrongPassword(pw), pw)
	}
}

func validSignup() SignupRequest {
	return SignupRequest{
		Username: " maria ",
		Email:    "maria@example.com",
		Password: "Secret1!",
		Confirm:  "Secret1!",
		Role:     "student",
	}
}

func TestRegisterStudent(t *testing.T) {
	users := &fakeUsers{}
	u, err := Registration{Users: users}.Register(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, "maria", u.Username)
	assert.Equal(t, RoleStudent, u.Role)
	require.Len(t, users.created, 1)
	assert.Equal(t, "Secret1!", users.created[0].Password)
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*SignupRequest)
		code  string
		field string
		cause error
	}{
		{name: "missing email", edit: func(r *SignupRequest) { r.Email = "" }, field: "email", cause: internaltypes.ErrInvalidInput},
		{name: "bad email", edit: func(r *SignupRequest) { r.Email = "maria" }, field: "email", cause: internaltypes.ErrInvalidInput},
		{name: "unknown role", edit: func(r *SignupRequest) { r.Role = "admin" }, field: "user_type", cause: internaltypes.ErrInvalidInput},
		{name: "weak password", edit: func(r *SignupRequest) { r.Password, r.Confirm = "password", "password" }, field: "password", cause: internaltypes.ErrInvalidInput},
		{name: "mismatch", edit: func(r *SignupRequest) { r.Confirm = "Secret2!" }, field: "confirm_password", cause: internaltypes.ErrInvalidInput},
		{name: "teacher signup closed", edit: func(r *SignupRequest) { r.Role = "teacher"; r.Code = "anything" }, field: "registration_code", cause: internaltypes.ErrUnauthorized},
		{name: "wrong teacher code", edit: func(r *SignupRequest) { r.Role = "teacher"; r.Code = "guess" }, code: "moon", field: "registration_code", cause: internaltypes.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeUsers{}
			req := validSignup()
			tt.edit(&req)
			_, err := Registration{Users: users, TeacherCode: tt.code}.Register(context.Background(), req)
			require.ErrorIs(t, err, tt.cause)
			var verr *internaltypes.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Fields[tt.field])
			assert.Empty(t, users.created)
		})
	}
}

func TestRegisterTeacherWithCode(t *testing.T) {
	req := validSignup()
	req.Role = "teacher"
	req.Code = " moon123 "
	u, err := Registration{Users: &fakeUsers{}, TeacherCode: "moon123"}.Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, u.IsTeacher())
}

func TestRegisterPassesStoreErrors(t *testing.T) {
	taken := internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "username", msgUsernameTaken)
	_, err := Registration{Users: &fakeUsers{err: taken}}.Register(context.Background(), validSignup())
	assert.True(t, errors.Is(err, internaltypes.ErrInvalidInput))
	assert.Equal(t, "username: "+msgUsernameTaken, err.Error())
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("Secret1!")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "Secret1!"))
	assert.False(t, CheckPassword(h, "secret1!"))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("teacher")
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, r)
	_, ok = ParseRole("Teacher")
	assert.False(t, ok)
}
