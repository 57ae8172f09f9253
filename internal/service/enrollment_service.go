package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/repository"
)

// EnrollmentService serves enrollment listings, timetables, rosters and grading.
type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	offeringRepo   *repository.OfferingRepository
	eventRepo      *repository.EnrollmentEventRepository
	events         EventPublisher
	log            zerolog.Logger
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	offeringRepo *repository.OfferingRepository,
	eventRepo *repository.EnrollmentEventRepository,
	events EventPublisher,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		offeringRepo:   offeringRepo,
		eventRepo:      eventRepo,
		events:         events,
		log:            log.With().Str("component", "enrollment_service").Logger(),
	}
}

// TimetableCourse is one offering placed on a weekly timetable.
type TimetableCourse struct {
	OfferingID uuid.UUID
	Code       string
	Name       string
	Location   string
	Schedule   []model.ScheduleSlot
}

// BuildTimetable groups the courses' meetings by weekday, Monday first, and
// orders each day by start time. Days without meetings are omitted.
func BuildTimetable(courses []TimetableCourse) []model.TimetableDay {
	byDay := make(map[model.Weekday][]model.TimetableEntry)
	for _, c := range courses {
		for _, s := range c.Schedule {
			byDay[s.Day] = append(byDay[s.Day], model.TimetableEntry{
				OfferingID: c.OfferingID,
				CourseCode: c.Code,
				CourseName: c.Name,
				Location:   c.Location,
				Start:      s.Start,
				End:        s.End,
			})
		}
	}

	days := []model.TimetableDay{}
	for _, d := range model.Weekdays {
		entries, ok := byDay[d]
		if !ok {
			continue
		}
		slices.SortFunc(entries, func(a, b model.TimetableEntry) int {
			if c := cmp.Compare(a.Start, b.Start); c != 0 {
				return c
			}
			return cmp.Compare(a.CourseCode, b.CourseCode)
		})
		days = append(days, model.TimetableDay{Day: d, Entries: entries})
	}
	return days
}

// ListForStudent lists the student's enrollments; an empty status matches all.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID uuid.UUID, status model.EnrollmentStatus) ([]model.EnrollmentDetail, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID, status)
}

// History returns the student's most recent enrollment events.
func (s *EnrollmentService) History(ctx context.Context, studentID uuid.UUID, limit int) ([]model.EnrollmentEvent, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.eventRepo.ListByStudent(ctx, studentID, limit)
}

// StudentTimetable builds the weekly timetable of the student's enrolled offerings.
func (s *EnrollmentService) StudentTimetable(ctx context.Context, studentID uuid.UUID) ([]model.TimetableDay, error) {
	enrolled, err := s.enrollmentRepo.ListByStudent(ctx, studentID, model.EnrollmentEnrolled)
	if err != nil {
		return nil, err
	}
	courses := make([]TimetableCourse, len(enrolled))
	for i, e := range enrolled {
		courses[i] = TimetableCourse{
			OfferingID: e.OfferingID,
			Code:       e.CourseCode,
			Name:       e.CourseName,
			Location:   e.Location,
			Schedule:   e.Schedule,
		}
	}
	return BuildTimetable(courses), nil
}

// ProfessorTimetable builds the weekly teaching timetable, optionally for one term.
func (s *EnrollmentService) ProfessorTimetable(ctx context.Context, professorID uuid.UUID, semester model.Semester, year int) ([]model.TimetableDay, error) {
	offerings, err := s.offeringRepo.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, err
	}
	courses := make([]TimetableCourse, 0, len(offerings))
	for _, o := range offerings {
		if (semester != "" && o.Semester != semester) || (year != 0 && o.Year != year) {
			continue
		}
		courses = append(courses, TimetableCourse{
			OfferingID: o.ID,
			Code:       o.CourseCode,
			Name:       o.CourseName,
			Location:   o.Location,
			Schedule:   o.Schedule,
		})
	}
	return BuildTimetable(courses), nil
}

// TaughtOfferings lists the offerings assigned to a professor.
func (s *EnrollmentService) TaughtOfferings(ctx context.Context, professorID uuid.UUID) ([]model.CourseOffering, error) {
	return s.offeringRepo.ListByProfessor(ctx, professorID)
}

// Roster lists the students of an offering the actor teaches.
func (s *EnrollmentService) Roster(ctx context.Context, actor Actor, offeringID uuid.UUID) ([]model.RosterEntry, error) {
	if err := authorizeTeaching(ctx, s.offeringRepo, actor, offeringID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.Roster(ctx, offeringID)
}

// SetGrade records the final grade, completing the enrollment.
func (s *EnrollmentService) SetGrade(ctx context.Context, actor Actor, enrollmentID uuid.UUID, grade model.Grade) (*model.Enrollment, error) {
	current, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTeaching(ctx, s.offeringRepo, actor, current.OfferingID); err != nil {
		return nil, err
	}
	e, err := s.enrollmentRepo.Complete(ctx, enrollmentID, grade)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("enrollment_id", e.ID.String()).
		Str("grade", string(grade)).
		Str("by", actor.ID.String()).
		Msg("Final grade recorded")
	s.publish(ctx, e, model.ActionGraded, string(grade))
	return e, nil
}

// AdminDrop marks an enrollment dropped, keeping the row for the record.
func (s *EnrollmentService) AdminDrop(ctx context.Context, enrollmentID uuid.UUID) (*model.Enrollment, error) {
	e, err := s.enrollmentRepo.MarkDropped(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("enrollment_id", e.ID.String()).Msg("Enrollment dropped by administrator")
	s.publish(ctx, e, model.ActionDropped, "administrative")
	return e, nil
}

func (s *EnrollmentService) publish(ctx context.Context, e *model.Enrollment, action model.EnrollmentAction, detail string) {
	ev := model.EnrollmentEvent{
		StudentID:  e.StudentID,
		OfferingID: e.OfferingID,
		Action:     action,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("enrollment_id", e.ID.String()).Msg("Failed to publish enrollment event")
	}
}
