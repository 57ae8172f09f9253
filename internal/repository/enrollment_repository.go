package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// ErrNotActive is returned when a status change targets an enrollment that is no longer enrolled.
var ErrNotActive = errors.New("enrollment is no longer active")

// EnrollmentRepository handles enrollment listings and status changes.
// Registration itself goes through RegistrationStore.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

const enrollmentColumns = `id, student_id, offering_id, status, grade, enrolled_at, completed_at`

func scanEnrollment(row interface{ Scan(...any) error }) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	if err := row.Scan(&e.ID, &e.StudentID, &e.OfferingID, &e.Status, &e.Grade, &e.EnrolledAt, &e.CompletedAt); err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

// GetByID retrieves an enrollment by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id))
}

// ListByStudent lists a student's enrollments with offering data and schedule.
// An empty status matches every status.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, status model.EnrollmentStatus) ([]model.EnrollmentDetail, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.student_id, e.offering_id, e.status, e.grade, e.enrolled_at, e.completed_at,
		        c.id, c.code, c.name, c.credits, o.semester, o.year, o.location
		 FROM enrollments e
		 JOIN course_offerings o ON o.id = e.offering_id
		 JOIN courses c ON c.id = o.course_id
		 WHERE e.student_id = $1 AND ($2 = '' OR e.status = $2)
		 ORDER BY o.year DESC, o.semester, c.code`, studentID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.EnrollmentDetail{}
	for rows.Next() {
		var d model.EnrollmentDetail
		if err := rows.Scan(&d.ID, &d.StudentID, &d.OfferingID, &d.Status, &d.Grade, &d.EnrolledAt, &d.CompletedAt,
			&d.CourseID, &d.CourseCode, &d.CourseName, &d.Credits, &d.Semester, &d.Year, &d.Location); err != nil {
			return nil, err
		}
		d.Schedule = []model.ScheduleSlot{}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(details))
	for i := range details {
		ids[i] = details[i].OfferingID
	}
	slots, err := loadSlots(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if s, ok := slots[details[i].OfferingID]; ok {
			details[i].Schedule = s
		}
	}
	return details, nil
}

// Roster lists the students of an offering.
func (r *EnrollmentRepository) Roster(ctx context.Context, offeringID uuid.UUID) ([]model.RosterEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, u.id, u.name, u.email, u.student_number, e.status, e.grade, e.enrolled_at
		 FROM enrollments e
		 JOIN users u ON u.id = e.student_id
		 WHERE e.offering_id = $1
		 ORDER BY u.name`, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roster := []model.RosterEntry{}
	for rows.Next() {
		var re model.RosterEntry
		if err := rows.Scan(&re.EnrollmentID, &re.StudentID, &re.StudentName, &re.StudentEmail,
			&re.StudentNumber, &re.Status, &re.Grade, &re.EnrolledAt); err != nil {
			return nil, err
		}
		roster = append(roster, re)
	}
	return roster, rows.Err()
}

// transition moves an enrolled row to a terminal status.
func (r *EnrollmentRepository) transition(ctx context.Context, id uuid.UUID, status model.EnrollmentStatus, grade *model.Grade) (*model.Enrollment, error) {
	e, err := scanEnrollment(r.pool.QueryRow(ctx,
		`UPDATE enrollments
		 SET status = $1, grade = $2,
		     completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		 WHERE id = $3 AND status = 'enrolled'
		 RETURNING `+enrollmentColumns, string(status), grade, id))
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotActive
	}
	return e, err
}

// Complete records the final grade and marks the enrollment completed.
func (r *EnrollmentRepository) Complete(ctx context.Context, id uuid.UUID, grade model.Grade) (*model.Enrollment, error) {
	return r.transition(ctx, id, model.EnrollmentCompleted, &grade)
}

// MarkDropped marks an active enrollment dropped, keeping the row.
func (r *EnrollmentRepository) MarkDropped(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return r.transition(ctx, id, model.EnrollmentDropped, nil)
}

// CompletedCredits sums the credits of completed enrollments with a non-failing grade.
func (r *EnrollmentRepository) CompletedCredits(ctx context.Context, studentID uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(c.credits), 0)
		 FROM enrollments e
		 JOIN course_offerings o ON o.id = e.offering_id
		 JOIN courses c ON c.id = o.course_id
		 WHERE e.student_id = $1 AND e.status = 'completed'
		   AND e.grade IS NOT NULL AND e.grade <> ALL($2)`,
		studentID, failingGrades(),
	).Scan(&total)
	return total, err
}

func failingGrades() []string {
	out := make([]string, len(model.FailingGrades))
	for i, g := range model.FailingGrades {
		out[i] = string(g)
	}
	return out
}

// IsEnrolled reports whether the student holds an active enrollment in the offering.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, studentID, offeringID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND offering_id = $2 AND status = 'enrolled')`,
		studentID, offeringID,
	).Scan(&ok)
	return ok, err
}
