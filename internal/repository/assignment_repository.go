package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/unierp-backend/internal/model"
)

// AssignmentRepository handles assignment data access.
type AssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentSelect = `
	SELECT a.id, a.offering_id, c.code, a.title, a.description, a.due_at, a.max_points,
	       a.created_by, a.created_at, a.updated_at
	FROM assignments a
	JOIN course_offerings o ON o.id = a.offering_id
	JOIN courses c ON c.id = o.course_id`

func scanAssignment(row interface{ Scan(...any) error }) (*model.Assignment, error) {
	a := &model.Assignment{}
	if err := row.Scan(&a.ID, &a.OfferingID, &a.CourseCode, &a.Title, &a.Description, &a.DueAt,
		&a.MaxPoints, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetByID retrieves an assignment.
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	return scanAssignment(r.pool.QueryRow(ctx, assignmentSelect+` WHERE a.id = $1`, id))
}

// ListByOffering lists an offering's assignments by due date.
func (r *AssignmentRepository) ListByOffering(ctx context.Context, offeringID uuid.UUID) ([]model.Assignment, error) {
	return r.list(ctx, assignmentSelect+` WHERE a.offering_id = $1 ORDER BY a.due_at`, offeringID)
}

// UpcomingForStudent lists assignments due after now in the student's enrolled offerings.
func (r *AssignmentRepository) UpcomingForStudent(ctx context.Context, studentID uuid.UUID, now time.Time, limit int) ([]model.Assignment, error) {
	return r.list(ctx, assignmentSelect+`
		JOIN enrollments e ON e.offering_id = a.offering_id
		WHERE e.student_id = $1 AND e.status = 'enrolled' AND a.due_at > $2
		ORDER BY a.due_at LIMIT $3`, studentID, now, limit)
}

// UpcomingForProfessor lists assignments due after now in the professor's offerings.
func (r *AssignmentRepository) UpcomingForProfessor(ctx context.Context, professorID uuid.UUID, now time.Time, limit int) ([]model.Assignment, error) {
	return r.list(ctx, assignmentSelect+`
		WHERE o.professor_id = $1 AND a.due_at > $2
		ORDER BY a.due_at LIMIT $3`, professorID, now, limit)
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (offering_id, title, description, due_at, max_points, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.OfferingID, a.Title, a.Description, a.DueAt, a.MaxPoints, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapError(err)
}

// Update applies the non-nil fields of upd.
func (r *AssignmentRepository) Update(ctx context.Context, id uuid.UUID, upd model.AssignmentUpdate) (*model.Assignment, error) {
	var s setClause
	setIf(&s, "title", upd.Title)
	setIf(&s, "description", upd.Description)
	setIf(&s, "due_at", upd.DueAt)
	setIf(&s, "max_points", upd.MaxPoints)
	if !s.empty() {
		sql, args := s.update("assignments", id, true)
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

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
