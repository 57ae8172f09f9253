package model

import "github.com/google/uuid"

// StudentDashboard summarises a student's current term.
type StudentDashboard struct {
	CurrentCredits      int            `json:"current_credits"`
	CreditCeiling       int            `json:"credit_ceiling"`
	EnrolledCourses     int            `json:"enrolled_courses"`
	CompletedCredits    int            `json:"completed_credits"`
	UpcomingAssignments []Assignment   `json:"upcoming_assignments"`
	RecentAnnouncements []Announcement `json:"recent_announcements"`
}

// TaughtOffering is an offering on a professor's dashboard.
type TaughtOffering struct {
	OfferingID    uuid.UUID `json:"offering_id"`
	CourseCode    string    `json:"course_code"`
	CourseName    string    `json:"course_name"`
	Semester      Semester  `json:"semester"`
	Year          int       `json:"year"`
	EnrolledCount int       `json:"enrolled_count"`
	MaxStudents   int       `json:"max_students"`
}

type ProfessorDashboard struct {
	Offerings           []TaughtOffering `json:"offerings"`
	UpcomingAssignments []Assignment     `json:"upcoming_assignments"`
}

// OfferingFill is an offering ranked by how full it is.
type OfferingFill struct {
	OfferingID    uuid.UUID `json:"offering_id"`
	CourseCode    string    `json:"course_code"`
	Semester      Semester  `json:"semester"`
	Year          int       `json:"year"`
	EnrolledCount int       `json:"enrolled_count"`
	MaxStudents   int       `json:"max_students"`
}

type AdminDashboard struct {
	Students          int                      `json:"students"`
	Professors        int                      `json:"professors"`
	Courses           int                      `json:"courses"`
	Offerings         int                      `json:"offerings"`
	ActiveEnrollments int                      `json:"active_enrollments"`
	StatusCounts      map[EnrollmentStatus]int `json:"status_counts"`
	FullestOfferings  []OfferingFill           `json:"fullest_offerings"`
}
