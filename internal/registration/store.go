package registration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stemsi/unierp-backend/internal/model"
)

var (
	// ErrOfferingNotFound is returned when the offering, or the course behind it, does not exist.
	ErrOfferingNotFound = errors.New("course offering not found")

	// ErrAlreadyEnrolled is returned by Store.InsertEnrollment when the (student, offering) pair exists.
	ErrAlreadyEnrolled = errors.New("student already has an enrollment for this offering")
)

// OfferingInfo is the slice of an offering the checks need.
type OfferingInfo struct {
	OfferingID  uuid.UUID
	CourseID    uuid.UUID
	Code        string
	Name        string
	Credits     int
	MaxStudents int
	Slots       []model.ScheduleSlot
}

// PrerequisiteEdge is one prerequisite of a course, with the required course's catalog data.
type PrerequisiteEdge struct {
	CourseID uuid.UUID
	Code     string
	Name     string
	MinGrade *model.Grade
}

// PassedCourse is a completed enrollment that carries a grade.
type PassedCourse struct {
	CourseID uuid.UUID
	Grade    model.Grade
}

// EnrolledSlot is a weekly meeting of an offering the student is currently enrolled in.
type EnrolledSlot struct {
	OfferingID uuid.UUID
	CourseID   uuid.UUID
	Code       string
	Name       string
	Slot       model.ScheduleSlot
}

// Store is the data the validator reads and writes. Implementations must
// return ErrOfferingNotFound from GetOffering for unknown offerings and
// ErrAlreadyEnrolled from InsertEnrollment on a duplicate pair. Any other
// error is treated as a data-access failure and returned unchanged.
type Store interface {
	GetOffering(ctx context.Context, offeringID uuid.UUID) (*OfferingInfo, error)
	ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]PrerequisiteEdge, error)
	// ListPassedCourses returns completed enrollments with a non-null grade.
	ListPassedCourses(ctx context.Context, studentID uuid.UUID) ([]PassedCourse, error)
	ListEnrolledSlots(ctx context.Context, studentID uuid.UUID) ([]EnrolledSlot, error)
	SumEnrolledCredits(ctx context.Context, studentID uuid.UUID) (int, error)
	// FindEnrollment returns nil, nil when the student has no row for the offering.
	FindEnrollment(ctx context.Context, studentID, offeringID uuid.UUID) (*model.Enrollment, error)
	// CountEnrolled counts enrolled rows; lock holds the offering row until the transaction ends.
	CountEnrolled(ctx context.Context, offeringID uuid.UUID, lock bool) (int, error)
	InsertEnrollment(ctx context.Context, e *model.Enrollment) error
	// DeleteEnrollment removes the enrolled row, reporting whether one existed.
	DeleteEnrollment(ctx context.Context, studentID, offeringID uuid.UUID) (bool, error)

	// Atomically runs fn in a single transaction. The Store passed to fn is
	// bound to that transaction; fn's error rolls it back.
	Atomically(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	// LockStudent serializes registrations of one student until the transaction ends.
	LockStudent(ctx context.Context, studentID uuid.UUID) error
}
