package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentAction is what happened to an enrollment.
type EnrollmentAction string

const (
	ActionRegistered EnrollmentAction = "registered"
	ActionDropped    EnrollmentAction = "dropped"
	ActionGraded     EnrollmentAction = "graded"
)

// EnrollmentEvent is the audit record published for every enrollment change.
type EnrollmentEvent struct {
	StudentID  uuid.UUID        `json:"student_id"`
	OfferingID uuid.UUID        `json:"offering_id"`
	Action     EnrollmentAction `json:"action"`
	Detail     string           `json:"detail,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
