package models

import "time"

// Role drives authorization decisions downstream.
type Role string

const (
	RoleInspector Role = "inspector"
	RoleManager   Role = "manager"
)

// Valid reports whether the role is one this system issues tokens for.
func (r Role) Valid() bool {
	return r == RoleInspector || r == RoleManager
}

// User is the stored account. PasswordHash never leaves the auth packages.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// RegisterRequest is the POST /auth/register body.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PublicUser is the wire shape for a user, without credentials.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Public strips credential material for responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}
