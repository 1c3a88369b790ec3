package model

import (
	"database/sql"
	"time"
)

// User represents a user row in the database.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Nickname     string
	PasswordHash string
	Birthday     time.Time
	Age          int
	Gender       string
	AvatarURL    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthday  string `json:"birthday"`
	Gender    string `json:"gender"`
	Nickname  string `json:"nickname"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response with a JWT token
// and user info.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserResponse represents user data safe for API responses. The
// password hash is never part of it.
type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Birthday  string    `json:"birthday"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Sanitize converts a user row into its API-safe representation.
func (u *User) Sanitize() UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Birthday:  u.Birthday.Format("2006-01-02"),
		Age:       u.Age,
		Gender:    u.Gender,
		CreatedAt: u.CreatedAt,
	}
	if u.AvatarURL.Valid {
		url := u.AvatarURL.String
		resp.AvatarURL = &url
	}
	return resp
}
