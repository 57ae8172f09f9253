package model

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a notice for one offering, or campus-wide when OfferingID is nil.
type Announcement struct {
	ID         uuid.UUID  `json:"id"`
	OfferingID *uuid.UUID `json:"offering_id,omitempty"`
	CourseCode *string    `json:"course_code,omitempty"`
	AuthorID   uuid.UUID  `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
}

type CreateAnnouncementRequest struct {
	OfferingID *uuid.UUID `json:"offering_id" binding:"omitempty"`
	Title      string     `json:"title" binding:"required,min=2,max=200"`
	Body       string     `json:"body" binding:"required,max=10000"`
}
