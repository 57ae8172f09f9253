package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus is the lifecycle state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Terminal reports whether no further transition is possible.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentCompleted || s == EnrollmentDropped
}

// CanTransitionTo reports whether s may move to next.
// Only enrolled rows move, and only to completed or dropped.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	return s == EnrollmentEnrolled && next.Terminal()
}

// Enrollment links a student to an offering.
type Enrollment struct {
	ID          uuid.UUID        `json:"id"`
	StudentID   uuid.UUID        `json:"student_id"`
	OfferingID  uuid.UUID        `json:"offering_id"`
	Status      EnrollmentStatus `json:"status"`
	Grade       *Grade           `json:"grade,omitempty"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// EnrollmentDetail is an enrollment joined with its offering for a student's listing.
type EnrollmentDetail struct {
	Enrollment
	CourseID   uuid.UUID      `json:"course_id"`
	CourseCode string         `json:"course_code"`
	CourseName string         `json:"course_name"`
	Credits    int            `json:"credits"`
	Semester   Semester       `json:"semester"`
	Year       int            `json:"year"`
	Location   string         `json:"location"`
	Schedule   []ScheduleSlot `json:"schedule"`
}

// RosterEntry is one student on an offering's class list.
type RosterEntry struct {
	EnrollmentID  uuid.UUID        `json:"enrollment_id"`
	StudentID     uuid.UUID        `json:"student_id"`
	StudentName   string           `json:"student_name"`
	StudentEmail  string           `json:"student_email"`
	StudentNumber *string          `json:"student_number,omitempty"`
	Status        EnrollmentStatus `json:"status"`
	Grade         *Grade           `json:"grade,omitempty"`
	EnrolledAt    time.Time        `json:"enrolled_at"`
}

// SetGradeRequest records a final grade, completing the enrollment.
type SetGradeRequest struct {
	Grade Grade `json:"grade" binding:"required,grade"`
}

// TimetableEntry is one meeting on a weekly timetable.
type TimetableEntry struct {
	OfferingID uuid.UUID `json:"offering_id"`
	CourseCode string    `json:"course_code"`
	CourseName string    `json:"course_name"`
	Location   string    `json:"location"`
	Start      ClockTime `json:"start_time"`
	End        ClockTime `json:"end_time"`
}

// TimetableDay groups the meetings held on one weekday, ordered by start time.
type TimetableDay struct {
	Day     Weekday          `json:"day_of_week"`
	Entries []TimetableEntry `json:"entries"`
}

// RegisterRequest names the offering a student wants to join.
type RegisterRequest struct {
	OfferingID uuid.UUID `json:"offering_id" binding:"required"`
}

// EnrollmentQuery filters an enrollment listing. A blank status matches all.
type EnrollmentQuery struct {
	Status EnrollmentStatus `form:"status" binding:"omitempty,oneof=enrolled completed dropped"`
}
