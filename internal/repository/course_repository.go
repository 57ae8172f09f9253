package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// CourseRepository handles course catalog and prerequisite data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, code, name, description, credits, department, created_at, updated_at`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	c := &model.Course{}
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.Credits, &c.Department, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// GetByID retrieves a course with its prerequisites.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	c.Prerequisites, err = r.ListPrerequisites(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByCode retrieves a course by its catalog code.
func (r *CourseRepository) GetByCode(ctx context.Context, code string) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE code = $1`, code))
}

// ListPaginated lists courses ordered by code, optionally filtered by department
// and a case-insensitive search over code and name.
func (r *CourseRepository) ListPaginated(ctx context.Context, department, search string, limit, offset int) ([]model.Course, int, error) {
	const where = ` WHERE ($1 = '' OR department = $1)
	                AND ($2 = '' OR code ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`+where, department, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses`+where+` ORDER BY code ASC LIMIT $3 OFFSET $4`,
		department, search, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// ListAll returns every course ordered by code.
func (r *CourseRepository) ListAll(ctx context.Context) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (code, name, description, credits, department)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Description, c.Credits, c.Department,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Upsert creates the course or overwrites it when the code exists.
func (r *CourseRepository) Upsert(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (code, name, description, credits, department)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (code) DO UPDATE
		 SET name = EXCLUDED.name, description = EXCLUDED.description,
		     credits = EXCLUDED.credits, department = EXCLUDED.department, updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.Description, c.Credits, c.Department,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

// Update applies the non-nil fields of upd.
func (r *CourseRepository) Update(ctx context.Context, id uuid.UUID, upd model.CourseUpdate) (*model.Course, error) {
	var s setClause
	setIf(&s, "code", upd.Code)
	setIf(&s, "name", upd.Name)
	setIf(&s, "description", upd.Description)
	setIf(&s, "credits", upd.Credits)
	setIf(&s, "department", upd.Department)
	if s.empty() {
		return r.GetByID(ctx, id)
	}
	sql, args := s.update("courses", id, true)
	if _, err := scanCourse(r.pool.QueryRow(ctx, sql+` RETURNING `+courseColumns, args...)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a course. Courses with offerings cannot be deleted.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPrerequisites returns the courses required by courseID.
func (r *CourseRepository) ListPrerequisites(ctx context.Context, courseID uuid.UUID) ([]model.Prerequisite, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cp.course_id, cp.prerequisite_id, c.code, c.name, cp.min_grade
		 FROM course_prerequisites cp
		 JOIN courses c ON c.id = cp.prerequisite_id
		 WHERE cp.course_id = $1
		 ORDER BY c.code`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prereqs := []model.Prerequisite{}
	for rows.Next() {
		var p model.Prerequisite
		if err := rows.Scan(&p.CourseID, &p.PrerequisiteID, &p.PrerequisiteCode, &p.PrerequisiteName, &p.MinGrade); err != nil {
			return nil, err
		}
		prereqs = append(prereqs, p)
	}
	return prereqs, rows.Err()
}

// AddPrerequisite links prereqID as required by courseID, replacing the minimum grade of an existing edge.
func (r *CourseRepository) AddPrerequisite(ctx context.Context, courseID, prereqID uuid.UUID, minGrade *model.Grade) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO course_prerequisites (course_id, prerequisite_id, min_grade)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (course_id, prerequisite_id) DO UPDATE SET min_grade = EXCLUDED.min_grade`,
		courseID, prereqID, minGrade)
	return mapError(err)
}

// RemovePrerequisite deletes an edge.
func (r *CourseRepository) RemovePrerequisite(ctx context.Context, courseID, prereqID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM course_prerequisites WHERE course_id = $1 AND prerequisite_id = $2`,
		courseID, prereqID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Requires reports whether courseID transitively requires targetID.
func (r *CourseRepository) Requires(ctx context.Context, courseID, targetID uuid.UUID) (bool, error) {
	var found bool
	err := r.pool.QueryRow(ctx,
		`WITH RECURSIVE chain(id) AS (
		     SELECT prerequisite_id FROM course_prerequisites WHERE course_id = $1
		     UNION
		     SELECT cp.prerequisite_id FROM course_prerequisites cp JOIN chain ON cp.course_id = chain.id
		 )
		 SELECT EXISTS (SELECT 1 FROM chain WHERE id = $2)`,
		courseID, targetID,
	).Scan(&found)
	return found, err
}
