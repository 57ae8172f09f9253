package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
	"github.com/stemsi/unierp-backend/internal/registration"
)

// RegistrationStore is the PostgreSQL registration.Store. Outside Atomically
// it queries the pool; inside, the transaction.
type RegistrationStore struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewRegistrationStore creates a new RegistrationStore.
func NewRegistrationStore(pool *pgxpool.Pool) *RegistrationStore {
	return &RegistrationStore{pool: pool, db: pool}
}

var _ registration.Store = (*RegistrationStore)(nil)

// GetOffering retrieves the offering's course data and slots.
func (s *RegistrationStore) GetOffering(ctx context.Context, offeringID uuid.UUID) (*registration.OfferingInfo, error) {
	info := &registration.OfferingInfo{}
	err := s.db.QueryRow(ctx,
		`SELECT o.id, c.id, c.code, c.name, c.credits, o.max_students
		 FROM course_offerings o
		 JOIN courses c ON c.id = o.course_id
		 WHERE o.id = $1`, offeringID,
	).Scan(&info.OfferingID, &info.CourseID, &info.Code, &info.Name, &info.Credits, &info.MaxStudents)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, registration.ErrOfferingNotFound
	}
	if err != nil {
		return nil, err
	}
	slots, err := loadSlots(ctx, s.db, []uuid.UUID{offeringID})
	if err != nil {
		return nil, err
	}
	info.Slots = slots[offeringID]
	return info, nil
}

// ListPrerequisites returns the edges out of courseID.
func (s *RegistrationStore) ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]registration.PrerequisiteEdge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.code, c.name, cp.min_grade
		 FROM course_prerequisites cp
		 JOIN courses c ON c.id = cp.prerequisite_id
		 WHERE cp.course_id = $1
		 ORDER BY c.code`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []registration.PrerequisiteEdge
	for rows.Next() {
		var e registration.PrerequisiteEdge
		if err := rows.Scan(&e.CourseID, &e.Code, &e.Name, &e.MinGrade); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// ListPassedCourses returns the student's graded completed enrollments.
func (s *RegistrationStore) ListPassedCourses(ctx context.Context, studentID uuid.UUID) ([]registration.PassedCourse, error) {
	rows, err := s.db.Query(ctx,
		`SELECT o.course_id, e.grade
		 FROM enrollments e
		 JOIN course_offerings o ON o.id = e.offering_id
		 WHERE e.student_id = $1 AND e.status = 'completed' AND e.grade IS NOT NULL`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passed []registration.PassedCourse
	for rows.Next() {
		var p registration.PassedCourse
		if err := rows.Scan(&p.CourseID, &p.Grade); err != nil {
			return nil, err
		}
		passed = append(passed, p)
	}
	return passed, rows.Err()
}

// ListEnrolledSlots returns every weekly slot of the student's enrolled offerings.
func (s *RegistrationStore) ListEnrolledSlots(ctx context.Context, studentID uuid.UUID) ([]registration.EnrolledSlot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT o.id, c.id, c.code, c.name,
		        cs.id, cs.day_of_week,
		        EXTRACT(EPOCH FROM cs.start_time)::int, EXTRACT(EPOCH FROM cs.end_time)::int
		 FROM enrollments e
		 JOIN course_offerings o ON o.id = e.offering_id
		 JOIN courses c ON c.id = o.course_id
		 JOIN course_schedules cs ON cs.offering_id = o.id
		 WHERE e.student_id = $1 AND e.status = 'enrolled'
		 ORDER BY c.code, cs.start_time`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []registration.EnrolledSlot
	for rows.Next() {
		var es registration.EnrolledSlot
		if err := rows.Scan(&es.OfferingID, &es.CourseID, &es.Code, &es.Name,
			&es.Slot.ID, &es.Slot.Day, &es.Slot.Start, &es.Slot.End); err != nil {
			return nil, err
		}
		es.Slot.OfferingID = es.OfferingID
		slots = append(slots, es)
	}
	return slots, rows.Err()
}

// SumEnrolledCredits totals the credits of every enrolled offering.
func (s *RegistrationStore) SumEnrolledCredits(ctx context.Context, studentID uuid.UUID) (int, error) {
	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(c.credits), 0)
		 FROM enrollments e
		 JOIN course_offerings o ON o.id = e.offering_id
		 JOIN courses c ON c.id = o.course_id
		 WHERE e.student_id = $1 AND e.status = 'enrolled'`, studentID,
	).Scan(&total)
	return total, err
}

// FindEnrollment returns the student's row for the offering, or nil.
func (s *RegistrationStore) FindEnrollment(ctx context.Context, studentID, offeringID uuid.UUID) (*model.Enrollment, error) {
	e, err := scanEnrollment(s.db.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 AND offering_id = $2`,
		studentID, offeringID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// CountEnrolled counts enrolled rows of the offering, optionally locking the offering row first.
func (s *RegistrationStore) CountEnrolled(ctx context.Context, offeringID uuid.UUID, lock bool) (int, error) {
	if lock {
		if _, err := s.db.Exec(ctx, `SELECT 1 FROM course_offerings WHERE id = $1 FOR UPDATE`, offeringID); err != nil {
			return 0, err
		}
	}
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE offering_id = $1 AND status = 'enrolled'`, offeringID,
	).Scan(&n)
	return n, err
}

// InsertEnrollment inserts the row, mapping the (student, offering) unique violation.
func (s *RegistrationStore) InsertEnrollment(ctx context.Context, e *model.Enrollment) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO enrollments (id, student_id, offering_id, status, enrolled_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING enrolled_at`,
		e.ID, e.StudentID, e.OfferingID, e.Status, e.EnrolledAt,
	).Scan(&e.EnrolledAt)
	if err = mapError(err); errors.Is(err, ErrDuplicate) {
		return registration.ErrAlreadyEnrolled
	}
	return err
}

// DeleteEnrollment removes the student's enrolled row for the offering.
func (s *RegistrationStore) DeleteEnrollment(ctx context.Context, studentID, offeringID uuid.UUID) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM enrollments WHERE student_id = $1 AND offering_id = $2 AND status = 'enrolled'`,
		studentID, offeringID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Atomically runs fn in a READ COMMITTED transaction. Serialization between
// registrations of one student comes from LockStudent.
func (s *RegistrationStore) Atomically(ctx context.Context, fn func(ctx context.Context, tx registration.Store) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &RegistrationStore{pool: s.pool, db: tx})
	})
}

// LockStudent takes a transaction-scoped advisory lock keyed on the student.
func (s *RegistrationStore) LockStudent(ctx context.Context, studentID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, studentID.String())
	return err
}
