package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is coursework attached to an offering.
type Assignment struct {
	ID          uuid.UUID `json:"id"`
	OfferingID  uuid.UUID `json:"offering_id"`
	CourseCode  string    `json:"course_code,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueAt       time.Time `json:"due_at"`
	MaxPoints   int       `json:"max_points"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description string    `json:"description" binding:"omitempty,max=10000"`
	DueAt       time.Time `json:"due_at" binding:"required"`
	MaxPoints   int       `json:"max_points" binding:"required,min=1,max=1000"`
}

// AssignmentUpdate lists the assignment columns that may be changed.
type AssignmentUpdate struct {
	Title       *string    `json:"title" binding:"omitempty,min=2,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=10000"`
	DueAt       *time.Time `json:"due_at" binding:"omitempty"`
	MaxPoints   *int       `json:"max_points" binding:"omitempty,min=1,max=1000"`
}

func (u AssignmentUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueAt == nil && u.MaxPoints == nil
}
