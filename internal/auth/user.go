package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/englishschool/internal/db"
	"github.com/example/englishschool/internal/internaltypes"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTeacher:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID        int64
	Username  string
	Email     string
	Role      Role
	Level     string // assessed proficiency, empty until set
	CreatedAt time.Time
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }

var ErrInvalidCredentials = errors.New("invalid credentials")

type NewUser struct {
	Username string
	Email    string
	Password string
	Role     Role
}

type Store struct {
	db *db.DB
}

func NewStore(d *db.DB) *Store {
	return &Store{db: d}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	return err == nil
}

// CreateUser stores a new account. A duplicate username or email comes back
// as a validation error on that field.
func (s *Store) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	hash, err := HashPassword(nu.Password)
	if err != nil {
		return User{}, err
	}
	u := User{Username: nu.Username, Email: nu.Email, Role: nu.Role}
	err = s.db.QueryRow(ctx, `
INSERT INTO users(username, email, password_bcrypt, role)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`,
		nu.Username, nu.Email, hash, string(nu.Role),
	).Scan(&u.ID, &u.CreatedAt)
	switch {
	case db.IsUniqueViolation(err, "users_username_key"):
		return User{}, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "username", msgUsernameTaken)
	case db.IsUniqueViolation(err, "users_email_key"):
		return User{}, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "email", msgEmailTaken)
	case err != nil:
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(ctx, `SELECT id, password_bcrypt FROM users WHERE username=$1`, username).Scan(&id, &hash)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, ErrInvalidCredentials
		}
		return 0, err
	}
	if !CheckPassword(hash, password) {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
SELECT id, username, email, role, COALESCE(level, ''), created_at
FROM users WHERE id=$1`, id))
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
SELECT id, username, email, role, COALESCE(level, ''), created_at
FROM users WHERE username=$1`, username))
}

// SetLevel records a student's assessed level.
func (s *Store) SetLevel(ctx context.Context, userID int64, level string) error {
	n, err := s.db.ExecAffected(ctx, `UPDATE users SET level=$2 WHERE id=$1 AND role='student'`, userID, level)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) scanUser(row db.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.Level, &u.CreatedAt); err != nil {
		return User{}, db.WrapNotFound(err)
	}
	u.Role = Role(role)
	return u, nil
}
