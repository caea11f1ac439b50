package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents user roles
type UserRole string

const (
	UserRoleHR       UserRole = "HR"
	UserRoleEmployee UserRole = "EMPLOYEE"
)

// User represents a user entity
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// RegisterInput represents input for registering through an invitation
type RegisterInput struct {
	Token    string `json:"token" binding:"required"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginInput represents input for user login. Identifier is a username or email.
type LoginInput struct {
	Identifier string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user"`
}
