package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Semester names the academic term of an offering.
type Semester string

const (
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
	SemesterFall   Semester = "Fall"
	SemesterWinter Semester = "Winter"
)

// Valid reports whether s is a known semester.
func (s Semester) Valid() bool {
	switch s {
	case SemesterSpring, SemesterSummer, SemesterFall, SemesterWinter:
		return true
	}
	return false
}

// TermOf returns the term in session at t: Winter in January, Spring from
// February to May, Summer in June and July, Fall from August.
func TermOf(t time.Time) (Semester, int) {
	switch m := t.Month(); {
	case m == time.January:
		return SemesterWinter, t.Year()
	case m <= time.May:
		return SemesterSpring, t.Year()
	case m <= time.July:
		return SemesterSummer, t.Year()
	}
	return SemesterFall, t.Year()
}

// Weekday is an English weekday name. Days are compared by exact string equality.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days in timetable order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the position of d in Weekdays, or -1 for an unknown day.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven weekday names.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// ClockTime is a time of day in whole seconds since midnight.
// It is exchanged as a zero-padded 24-hour "HH:MM:SS" string.
type ClockTime int

const secondsPerDay = 24 * 60 * 60

// ParseClockTime parses "HH:MM:SS" or "HH:MM". Every field is two digits.
func ParseClockTime(s string) (ClockTime, error) {
	for i := 0; i < len(s); i++ {
		if i%3 == 2 {
			if s[i] != ':' {
				return 0, fmt.Errorf("invalid clock time %q", s)
			}
		} else if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	}

	var h, m, sec int
	var err error
	switch len(s) {
	case len("15:04:05"):
		_, err = fmt.Sscanf(s, "%02d:%02d:%02d", &h, &m, &sec)
	case len("15:04"):
		_, err = fmt.Sscanf(s, "%02d:%02d", &h, &m)
	default:
		err = errors.New("expected HH:MM:SS")
	}
	if err != nil || h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime(h*3600 + m*60 + sec), nil
}

// MustClockTime is ParseClockTime for literals known to be valid.
func MustClockTime(s string) ClockTime {
	t, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ClockTime) parts() (h, m, s int) {
	v := int(t) % secondsPerDay
	return v / 3600, (v % 3600) / 60, v % 60
}

// String formats t as "HH:MM:SS".
func (t ClockTime) String() string {
	h, m, s := t.parts()
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Short formats t as "HH:MM".
func (t ClockTime) Short() string {
	h, m, _ := t.parts()
	return fmt.Sprintf("%02d:%02d", h, m)
}

// MarshalText implements encoding.TextMarshaler.
func (t ClockTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ErrInvalidSlot is returned for a slot with an unknown day or a non-positive duration.
var ErrInvalidSlot = errors.New("schedule slot must have a valid weekday and start before end")

// ScheduleSlot is one weekly meeting of an offering.
type ScheduleSlot struct {
	ID         uuid.UUID `json:"id"`
	OfferingID uuid.UUID `json:"offering_id"`
	Day        Weekday   `json:"day_of_week"`
	Start      ClockTime `json:"start_time"`
	End        ClockTime `json:"end_time"`
}

// Validate checks the day name and that the slot has positive length.
func (s ScheduleSlot) Validate() error {
	if !s.Day.Valid() || s.Start >= s.End {
		return ErrInvalidSlot
	}
	return nil
}

// TimeRange formats the slot as "HH:MM-HH:MM".
func (s ScheduleSlot) TimeRange() string {
	return s.Start.Short() + "-" + s.End.Short()
}

// CourseOffering is a semester/year delivery of a course.
type CourseOffering struct {
	ID            uuid.UUID      `json:"id"`
	CourseID      uuid.UUID      `json:"course_id"`
	CourseCode    string         `json:"course_code"`
	CourseName    string         `json:"course_name"`
	Credits       int            `json:"credits"`
	Semester      Semester       `json:"semester"`
	Year          int            `json:"year"`
	ProfessorID   *uuid.UUID     `json:"professor_id,omitempty"`
	ProfessorName *string        `json:"professor_name,omitempty"`
	MaxStudents   int            `json:"max_students"`
	Location      string         `json:"location"`
	EnrolledCount int            `json:"enrolled_count"`
	Schedule      []ScheduleSlot `json:"schedule"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ScheduleSlotInput is one weekly meeting in a create/replace payload.
type ScheduleSlotInput struct {
	Day   Weekday   `json:"day_of_week" binding:"required,weekday"`
	Start ClockTime `json:"start_time"`
	End   ClockTime `json:"end_time" binding:"gtfield=Start"`
}

// Slot converts the input into a ScheduleSlot.
func (in ScheduleSlotInput) Slot() ScheduleSlot {
	return ScheduleSlot{Day: in.Day, Start: in.Start, End: in.End}
}

// CreateOfferingRequest is the payload for scheduling a course in a term.
type CreateOfferingRequest struct {
	CourseID    uuid.UUID           `json:"course_id" binding:"required"`
	Semester    Semester            `json:"semester" binding:"required,oneof=Spring Summer Fall Winter"`
	Year        int                 `json:"year" binding:"required,min=2000,max=2100"`
	ProfessorID *uuid.UUID          `json:"professor_id" binding:"omitempty"`
	MaxStudents int                 `json:"max_students" binding:"required,min=1,max=1000"`
	Location    string              `json:"location" binding:"omitempty,max=100"`
	Schedule    []ScheduleSlotInput `json:"schedule" binding:"omitempty,dive"`
}

// OfferingUpdate lists the offering columns that may be changed.
// A nil field is left untouched.
type OfferingUpdate struct {
	Semester    *Semester  `json:"semester" binding:"omitempty,oneof=Spring Summer Fall Winter"`
	Year        *int       `json:"year" binding:"omitempty,min=2000,max=2100"`
	ProfessorID *uuid.UUID `json:"professor_id" binding:"omitempty"`
	MaxStudents *int       `json:"max_students" binding:"omitempty,min=1,max=1000"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
}

// Empty reports whether the update would change nothing.
func (u OfferingUpdate) Empty() bool {
	return u.Semester == nil && u.Year == nil && u.ProfessorID == nil && u.MaxStudents == nil && u.Location == nil
}

// ReplaceScheduleRequest replaces every weekly slot of an offering.
type ReplaceScheduleRequest struct {
	Schedule []ScheduleSlotInput `json:"schedule" binding:"dive"`
}

// TermQuery filters offering lists by term. Blank fields match every term.
type TermQuery struct {
	Semester Semester `form:"semester" binding:"omitempty,oneof=Spring Summer Fall Winter"`
	Year     int      `form:"year" binding:"omitempty,min=2000,max=2100"`
}
