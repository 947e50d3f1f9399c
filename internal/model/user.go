package model

import "time"

// Role enumerates user roles within an institute.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

// UserStatus enumerates registration approval states. Self-registered
// users start PENDING and cannot use role-gated surfaces until an admin
// approves them.
type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusApproved UserStatus = "APPROVED"
	UserStatusRejected UserStatus = "REJECTED"
)

// User represents a registered account scoped to an institute.
type User struct {
	ID           int        `json:"id"`
	InstituteID  int        `json:"institute_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	// StandardID ties a student to a syllabus standard (class level).
	StandardID *int      `json:"standard_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for self-registration. Admin accounts are
// provisioned out of band (cmd/create-admin), never through this endpoint.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=150"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
	Role       Role   `json:"role" binding:"required,oneof=TEACHER STUDENT"`
	StandardID *int   `json:"standard_id" binding:"omitempty"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LoginResponse is returned after successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ReviewUserRequest is the payload for approving or rejecting a pending
// registration.
type ReviewUserRequest struct {
	Status UserStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}
