package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is a catalog entry independent of any semester.
type Course struct {
	ID            uuid.UUID      `json:"id"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Credits       int            `json:"credits"`
	Department    string         `json:"department"`
	Prerequisites []Prerequisite `json:"prerequisites,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Prerequisite is a directed edge: CourseID requires PrerequisiteID.
type Prerequisite struct {
	CourseID         uuid.UUID `json:"course_id"`
	PrerequisiteID   uuid.UUID `json:"prerequisite_id"`
	PrerequisiteCode string    `json:"prerequisite_code"`
	PrerequisiteName string    `json:"prerequisite_name"`
	MinGrade         *Grade    `json:"min_grade,omitempty"`
}

// CreateCourseRequest is the payload for adding a course to the catalog.
type CreateCourseRequest struct {
	Code        string `json:"code" binding:"required,min=2,max=20"`
	Name        string `json:"name" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=4000"`
	Credits     int    `json:"credits" binding:"required,min=1,max=25"`
	Department  string `json:"department" binding:"omitempty,max=100"`
}

// CourseUpdate lists the course columns that may be changed.
// A nil field is left untouched.
type CourseUpdate struct {
	Code        *string `json:"code" binding:"omitempty,min=2,max=20"`
	Name        *string `json:"name" binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=4000"`
	Credits     *int    `json:"credits" binding:"omitempty,min=1,max=25"`
	Department  *string `json:"department" binding:"omitempty,max=100"`
}

// Empty reports whether the update would change nothing.
func (u CourseUpdate) Empty() bool {
	return u.Code == nil && u.Name == nil && u.Description == nil && u.Credits == nil && u.Department == nil
}

// AddPrerequisiteRequest is the payload for linking a prerequisite to a course.
type AddPrerequisiteRequest struct {
	PrerequisiteID uuid.UUID `json:"prerequisite_id" binding:"required"`
	MinGrade       *Grade    `json:"min_grade" binding:"omitempty,grade"`
}
