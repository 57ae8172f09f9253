package repository

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// OfferingRepository handles course offering and weekly schedule data access.
type OfferingRepository struct {
	pool *pgxpool.Pool
}

// NewOfferingRepository creates a new OfferingRepository.
func NewOfferingRepository(pool *pgxpool.Pool) *OfferingRepository {
	return &OfferingRepository{pool: pool}
}

const offeringSelect = `
	SELECT o.id, o.course_id, c.code, c.name, c.credits, o.semester, o.year,
	       o.professor_id, p.name, o.max_students, o.location,
	       (SELECT COUNT(*) FROM enrollments e WHERE e.offering_id = o.id AND e.status = 'enrolled'),
	       o.created_at, o.updated_at
	FROM course_offerings o
	JOIN courses c ON c.id = o.course_id
	LEFT JOIN users p ON p.id = o.professor_id`

func scanOffering(row interface{ Scan(...any) error }) (*model.CourseOffering, error) {
	o := &model.CourseOffering{}
	err := row.Scan(&o.ID, &o.CourseID, &o.CourseCode, &o.CourseName, &o.Credits, &o.Semester, &o.Year,
		&o.ProfessorID, &o.ProfessorName, &o.MaxStudents, &o.Location, &o.EnrolledCount,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	o.Schedule = []model.ScheduleSlot{}
	return o, nil
}

// loadSlots fetches the schedule slots of the given offerings, sorted by weekday then start time.
func loadSlots(ctx context.Context, db DBTX, offeringIDs []uuid.UUID) (map[uuid.UUID][]model.ScheduleSlot, error) {
	out := make(map[uuid.UUID][]model.ScheduleSlot, len(offeringIDs))
	if len(offeringIDs) == 0 {
		return out, nil
	}
	rows, err := db.Query(ctx,
		`SELECT id, offering_id, day_of_week,
		        EXTRACT(EPOCH FROM start_time)::int, EXTRACT(EPOCH FROM end_time)::int
		 FROM course_schedules WHERE offering_id = ANY($1)`, offeringIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s model.ScheduleSlot
		if err := rows.Scan(&s.ID, &s.OfferingID, &s.Day, &s.Start, &s.End); err != nil {
			return nil, err
		}
		out[s.OfferingID] = append(out[s.OfferingID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, slots := range out {
		sortSlots(slots)
	}
	return out, nil
}

func sortSlots(slots []model.ScheduleSlot) {
	slices.SortFunc(slots, func(a, b model.ScheduleSlot) int {
		if c := cmp.Compare(a.Day.Index(), b.Day.Index()); c != 0 {
			return c
		}
		return cmp.Compare(a.Start, b.Start)
	})
}

func (r *OfferingRepository) attachSlots(ctx context.Context, offerings []model.CourseOffering) error {
	ids := make([]uuid.UUID, len(offerings))
	for i := range offerings {
		ids[i] = offerings[i].ID
	}
	slots, err := loadSlots(ctx, r.pool, ids)
	if err != nil {
		return err
	}
	for i := range offerings {
		if s, ok := slots[offerings[i].ID]; ok {
			offerings[i].Schedule = s
		}
	}
	return nil
}

func (r *OfferingRepository) list(ctx context.Context, query string, args ...any) ([]model.CourseOffering, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := []model.CourseOffering{}
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSlots(ctx, offerings); err != nil {
		return nil, err
	}
	return offerings, nil
}

// GetByID retrieves an offering with its course data and schedule.
func (r *OfferingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CourseOffering, error) {
	o, err := scanOffering(r.pool.QueryRow(ctx, offeringSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	slots, err := loadSlots(ctx, r.pool, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if s, ok := slots[id]; ok {
		o.Schedule = s
	}
	return o, nil
}

// ListByTerm lists offerings of a term; a zero year or empty semester matches all.
func (r *OfferingRepository) ListByTerm(ctx context.Context, semester model.Semester, year int) ([]model.CourseOffering, error) {
	return r.list(ctx, offeringSelect+`
		WHERE ($1 = '' OR o.semester = $1) AND ($2 = 0 OR o.year = $2)
		ORDER BY o.year DESC, o.semester, c.code`, string(semester), year)
}

// ListByCourse lists every offering of a course, newest first.
func (r *OfferingRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.CourseOffering, error) {
	return r.list(ctx, offeringSelect+` WHERE o.course_id = $1 ORDER BY o.year DESC, o.semester`, courseID)
}

// ListByProfessor lists the offerings a professor teaches.
func (r *OfferingRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID) ([]model.CourseOffering, error) {
	return r.list(ctx, offeringSelect+` WHERE o.professor_id = $1 ORDER BY o.year DESC, o.semester, c.code`, professorID)
}

// FindByCourseTerm returns the offering of a course in a term, or ErrNotFound.
func (r *OfferingRepository) FindByCourseTerm(ctx context.Context, courseID uuid.UUID, semester model.Semester, year int) (*model.CourseOffering, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM course_offerings WHERE course_id = $1 AND semester = $2 AND year = $3
		 ORDER BY created_at LIMIT 1`, courseID, semester, year,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err)
	}
	return r.GetByID(ctx, id)
}

// ProfessorOf returns the professor assigned to an offering, nil when unassigned.
func (r *OfferingRepository) ProfessorOf(ctx context.Context, offeringID uuid.UUID) (*uuid.UUID, error) {
	var prof *uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT professor_id FROM course_offerings WHERE id = $1`, offeringID).Scan(&prof)
	if err != nil {
		return nil, mapError(err)
	}
	return prof, nil
}

// Create inserts the offering and its schedule in one transaction.
func (r *OfferingRepository) Create(ctx context.Context, o *model.CourseOffering) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO course_offerings (course_id, semester, year, professor_id, max_students, location)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, created_at, updated_at`,
			o.CourseID, o.Semester, o.Year, o.ProfessorID, o.MaxStudents, o.Location,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		return insertSlots(ctx, tx, o.ID, o.Schedule)
	})
	return mapError(err)
}

func insertSlots(ctx context.Context, tx pgx.Tx, offeringID uuid.UUID, slots []model.ScheduleSlot) error {
	for i := range slots {
		slots[i].OfferingID = offeringID
		if err := tx.QueryRow(ctx,
			`INSERT INTO course_schedules (offering_id, day_of_week, start_time, end_time)
			 VALUES ($1, $2, $3::time, $4::time) RETURNING id`,
			offeringID, slots[i].Day, slots[i].Start.String(), slots[i].End.String(),
		).Scan(&slots[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceSchedule swaps every slot of an offering for slots.
func (r *OfferingRepository) ReplaceSchedule(ctx context.Context, offeringID uuid.UUID, slots []model.ScheduleSlot) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM course_offerings WHERE id = $1)`, offeringID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM course_schedules WHERE offering_id = $1`, offeringID); err != nil {
			return err
		}
		if err := insertSlots(ctx, tx, offeringID, slots); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE course_offerings SET updated_at = NOW() WHERE id = $1`, offeringID)
		return err
	})
	return mapError(err)
}

// Update applies the non-nil fields of upd.
func (r *OfferingRepository) Update(ctx context.Context, id uuid.UUID, upd model.OfferingUpdate) (*model.CourseOffering, error) {
	var s setClause
	setIf(&s, "semester", upd.Semester)
	setIf(&s, "year", upd.Year)
	setIf(&s, "professor_id", upd.ProfessorID)
	setIf(&s, "max_students", upd.MaxStudents)
	setIf(&s, "location", upd.Location)
	if !s.empty() {
		sql, args := s.update("course_offerings", id, true)
		tag, err := r.pool.Exec(ctx, sql, args...)
		if err != nil {
			return nil, mapError(err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes an offering together with its schedule and enrollments.
func (r *OfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM course_offerings WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
