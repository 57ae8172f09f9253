package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the single role a user holds in the ERP.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return true
	}
	return false
}

// User represents any account: student, professor or administrator.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	StudentNumber *string   `json:"student_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload for creating a user account.
type CreateUserRequest struct {
	Email         string  `json:"email" binding:"required,email,max=255"`
	Name          string  `json:"name" binding:"required,min=2,max=100"`
	Role          Role    `json:"role" binding:"required,oneof=student professor admin"`
	StudentNumber *string `json:"student_number" binding:"omitempty,min=3,max=20"`
}

// UserUpdate lists the user columns that may be changed after creation.
// A nil field is left untouched.
type UserUpdate struct {
	Email         *string `json:"email" binding:"omitempty,email,max=255"`
	Name          *string `json:"name" binding:"omitempty,min=2,max=100"`
	StudentNumber *string `json:"student_number" binding:"omitempty,min=3,max=20"`
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.StudentNumber == nil
}
